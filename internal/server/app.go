// Package server wires the cake library API together: it opens the credential
// store, builds the hasher, token issuer and user service, and runs the HTTP
// server until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/logging"
	"github.com/dmitrijs2005/cakelibrary/internal/server/auth"
	"github.com/dmitrijs2005/cakelibrary/internal/server/config"
	"github.com/dmitrijs2005/cakelibrary/internal/server/httpapi"
	"github.com/dmitrijs2005/cakelibrary/internal/server/password"
	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cakelibrary/internal/server/services"
)

// startupTimeout bounds the initial storage connection and migrations.
const startupTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage repomanager.RepositoryManager
	http    *httpapi.Server
}

// openStorage is a seam for tests.
var openStorage = repomanager.Open

// NewApp validates c and builds every dependency. Storage failures wrap
// common.ErrStorageUnavailable.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(logOut, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	hasher, err := password.New(c.PasswordScheme, c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}

	issuer, err := auth.NewIssuer([]byte(c.SecretKey), auth.WithTTL(c.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	storage, err := openStorage(openCtx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	logger.Info(ctx, "storage ready", "backend", c.Storage)

	us := services.NewUserService(storage.Users(), hasher, issuer)

	return &App{
		config:  c,
		logger:  logger,
		storage: storage,
		http:    httpapi.NewServer(c.Addr(), c.ShutdownTimeout, logger, us),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then closes the storage connection.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	runErr := app.http.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "http server error", "error", runErr)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.storage.Close(closeCtx); err != nil {
		app.logger.Warn(ctx, "storage close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return runErr
}
