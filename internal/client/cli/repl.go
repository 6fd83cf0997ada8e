package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/yama/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context, p string) error
	Cat(ctx context.Context, p string) error
	Render(ctx context.Context, p string) error
	Put(ctx context.Context, local, remote string) error
	Get(ctx context.Context, remote, local string) error
	Mkdir(ctx context.Context, p string) error
	Remove(ctx context.Context, p string) error
}

const (
	helpAnonymous = "Available commands: login, ls [path], cat <path>, render <path>, get <remote> <local>, exit"
	helpLoggedIn  = "Available commands: ls [path], cat <path>, render <path>, get <remote> <local>, put <local> <remote>, mkdir <path>, rm <path>, whoami, logout, exit"
)

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to a. Handler errors are printed and the loop
// continues. The loop exits on scanner EOF or on "exit" / "quit".
//
// Reading is allowed without a session: the backend serves the public
// tree to anonymous users.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("yama %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "ls", "l":
			p := ""
			if len(args) > 0 {
				p = args[0]
			}
			err = a.List(ctx, p)

		case "cat":
			if len(args) == 0 {
				printlnFn("Usage: cat <path>")
				continue
			}
			err = a.Cat(ctx, args[0])

		case "render":
			if len(args) == 0 {
				printlnFn("Usage: render <path>")
				continue
			}
			err = a.Render(ctx, args[0])

		case "put":
			if len(args) < 2 {
				printlnFn("Usage: put <local> <remote>")
				continue
			}
			err = a.Put(ctx, args[0], args[1])

		case "get":
			if len(args) < 2 {
				printlnFn("Usage: get <remote> <local>")
				continue
			}
			err = a.Get(ctx, args[0], args[1])

		case "mkdir":
			if len(args) == 0 {
				printlnFn("Usage: mkdir <path>")
				continue
			}
			err = a.Mkdir(ctx, args[0])

		case "rm":
			if len(args) == 0 {
				printlnFn("Usage: rm <path>")
				continue
			}
			err = a.Remove(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describeError(err))
		}
	}
}

func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Kind == client.KindAuth && apiErr.Status == 401:
		return "Error: session expired or credentials rejected, please login"
	case errors.Is(err, client.ErrUnauthorized):
		return "Error: not authorized, please login"
	default:
		return "Error: " + err.Error()
	}
}
