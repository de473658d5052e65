package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/cakelibrary/internal/client/api"
	"github.com/dmitrijs2005/cakelibrary/internal/client/config"
	"github.com/dmitrijs2005/cakelibrary/internal/client/router"
	"github.com/dmitrijs2005/cakelibrary/internal/client/session"
	"github.com/dmitrijs2005/cakelibrary/internal/client/storage"
	"github.com/dmitrijs2005/cakelibrary/internal/logging"
)

// openStorage is a test seam for picking the storage backend.
var openStorage = func(ctx context.Context, c *config.Config) (storage.Storage, error) {
	if c.StoragePath == storage.MemoryPath {
		return storage.NewMemoryStorage(), nil
	}
	return storage.OpenSQLite(ctx, c.StoragePath, c.SyncInterval)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   storage.Storage
	api     api.Client
	session *session.Session
	router  *router.Router
	reader  *bufio.Reader

	out *syncWriter

	mu      sync.Mutex
	current router.Decision
	path    string
}

// NewApp opens storage, restores the session and prepares the route table.
// Prompts read from in; everything user-facing goes to out.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, "text", c.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := api.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	sess, err := session.New(ctx, client, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		store:   store,
		api:     client,
		session: sess,
		router:  router.New(router.DefaultTable),
		reader:  bufio.NewReader(in),
		out:     &syncWriter{w: out},
	}, nil
}

// Run refreshes the restored session, lands on the home route and serves
// the REPL until the user exits or the input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := a.session.Watch(ctx, a.onSessionChange); err != nil && ctx.Err() == nil {
			a.logger.Warn(ctx, "session watcher stopped", "error", err)
		}
	}()

	a.printf("Welcome to the cake library (type 'help' for commands)\n")

	if err := a.api.Ping(ctx); err != nil {
		a.printf("Server is not reachable: %v\n", err)
	}

	if a.session.IsAuthenticated() {
		if err := a.session.FetchProfile(ctx); err != nil {
			a.printf("Could not restore session: %v\n", err)
		}
	}

	_ = a.Navigate(ctx, "/")

	runREPL(ctx, a, a.status, a.reader)

	cancel()
	<-watchDone
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	st := a.session.Snapshot()

	a.mu.Lock()
	route := a.current.Route.Name
	a.mu.Unlock()

	if st.User != nil {
		return fmt.Sprintf("(%s %s)", st.User.Username, route)
	}
	if st.Token != "" {
		return fmt.Sprintf("(signed in %s)", route)
	}
	return fmt.Sprintf("(%s)", route)
}

// onSessionChange runs on the watcher goroutine when another process signs
// in or out.
func (a *App) onSessionChange(st session.State) {
	if st.Token == "" {
		a.printf("\nSession ended in another window.\n")
	} else if st.User != nil {
		a.printf("\nSigned in as %s in another window.\n", st.User.Username)
	}

	a.mu.Lock()
	path := a.path
	a.mu.Unlock()

	_ = a.Navigate(context.Background(), path)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// syncWriter serializes writes from the REPL and the session watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
