package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/cakelibrary/internal/client/router"
)

// maxRedirects bounds guard redirects per navigation.
const maxRedirects = 3

// Navigate guards path and moves there, following redirects.
func (a *App) Navigate(ctx context.Context, path string) error {
	if path == "" || !strings.HasPrefix(path, "/") {
		a.printf("Usage: go </path>\n")
		return fmt.Errorf("invalid path %q", path)
	}

	for i := 0; ; i++ {
		d := a.router.Resolve(path, a.session.IsAuthenticated())
		if d.Redirect == "" {
			a.mu.Lock()
			a.current = d
			a.path = path
			a.mu.Unlock()
			a.render(ctx, d)
			return nil
		}
		if i == maxRedirects {
			return fmt.Errorf("too many redirects from %q", path)
		}
		a.printf("%s is not available, redirecting to %s\n", path, d.Redirect)
		path = d.Redirect
	}
}

func (a *App) render(ctx context.Context, d router.Decision) {
	switch d.Route.Name {
	case router.NotFound:
		// unknown paths show the home page
		a.printf("Page not found. Showing %s.\n", router.Home)
	case router.Account:
		a.printf("[%s]\n", d.Route.Name)
		_ = a.Profile(ctx)
		return
	}

	a.printf("[%s]%s\n", d.Route.Name, formatParams(d.Params))
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return " " + strings.Join(parts, " ")
}
