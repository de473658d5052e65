package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cakelibrary/internal/client/api"
	"github.com/dmitrijs2005/cakelibrary/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password and creates the account.
// The account is not signed in; the user is sent to the login page.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.session.Register(ctx, username, email, string(password))
	if err != nil {
		a.printFailure("Registration failed", err)
		return err
	}

	a.printf("%s\n", res.Message)
	if a.session.IsAuthenticated() {
		return a.Navigate(ctx, "/")
	}
	return a.Navigate(ctx, "/login")
}

// Login prompts for email and password and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		a.printFailure("Login failed", err)
		return err
	}

	a.logger.Debug(ctx, "login succeeded", "email", email)
	a.printf("Login successful\n")
	return a.Navigate(ctx, "/")
}

// Logout ends the session here and in every process sharing the storage.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.printf("Logout: %v\n", err)
		return err
	}
	a.printf("Logged out successfully\n")
	return a.Navigate(ctx, "/")
}

// Profile refreshes and prints the signed-in user.
func (a *App) Profile(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		a.printf("Not logged in\n")
		return nil
	}

	if err := a.session.FetchProfile(ctx); err != nil {
		a.printFailure("Profile", err)
		if errors.Is(err, api.ErrUnauthorized) {
			return a.Navigate(ctx, "/login")
		}
		return err
	}

	u := a.session.Snapshot().User
	if u == nil {
		return nil
	}
	a.printf("Username: %s\nEmail:    %s\nSince:    %s\n", u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))
	return nil
}

// Status prints the session state.
func (a *App) Status(ctx context.Context) error {
	st := a.session.Snapshot()

	a.mu.Lock()
	path := a.path
	a.mu.Unlock()

	switch {
	case st.User != nil:
		a.printf("Logged in as %s <%s>\n", st.User.Username, st.User.Email)
	case st.Token != "":
		a.printf("Logged in\n")
	default:
		a.printf("Not logged in\n")
	}
	a.printf("Page: %s\n", path)
	if st.Error != "" {
		a.printf("Last error: %s\n", st.Error)
	}
	return nil
}

func (a *App) printFailure(prefix string, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		a.printf("%s: %s\n%s", prefix, apiErr.Message, formatFields(apiErr.Fields))
		return
	}
	a.printf("%s: %v\n", prefix, err)
}
