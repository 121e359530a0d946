package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Menu(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Rooms(ctx context.Context) error
	Find(ctx context.Context, args []string) error
	Schedule(ctx context.Context, args []string) error
	Book(ctx context.Context, args []string) error
	Devices(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, forgot, reset, exit"
	helpSignedIn  = "Available commands: me, menu, dashboard, rooms, find [query], schedule <room> [date], book <room>, devices <room>, passwd, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the SCAMS CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'; the remaining tokens are passed to commands
// that take arguments. The loop exits on EOF or when the user types "exit"
// or "quit".
//
// Errors returned by command handlers are not printed here: the session
// notifies failures of auth commands and room commands report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "scams %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
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
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "forgot":
			_ = a.ForgotPassword(ctx)
		case "reset":
			_ = a.ResetPassword(ctx)
		case "passwd":
			_ = a.ChangePassword(ctx)
		case "me":
			_ = a.Me(ctx)
		case "menu":
			_ = a.Menu(ctx)
		case "dashboard":
			_ = a.Dashboard(ctx)
		case "rooms":
			_ = a.Rooms(ctx)
		case "find":
			_ = a.Find(ctx, args)
		case "schedule":
			_ = a.Schedule(ctx, args)
		case "book":
			_ = a.Book(ctx, args)
		case "devices":
			_ = a.Devices(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
