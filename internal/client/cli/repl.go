package cli

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Navigate(ctx context.Context, path string) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the cake library client.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
//	help            show available commands
//	go <path>       navigate, e.g. go /account or go /recipe/42
//	register        create an account
//	login           sign in
//	logout          sign out (everywhere sharing this storage)
//	profile         show the signed-in user
//	status          show session state and current page
//	exit | quit     leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors.
// The reader is shared with the command prompts so that no input is
// buffered away from them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cake %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: go <path>, profile, status, logout, exit")
			} else {
				printlnFn("Available commands: go <path>, register, login, status, exit")
			}
			printlnFn("Pages: / /login /register /ingredients /account /add-recipe /recipe/<id> /edit-recipe/<id>")

		case "go":
			if len(args) != 1 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Navigate(ctx, args[0])

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, fields[k])
	}
	return b.String()
}
