package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	Keygen(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Verify(ctx context.Context) error
	PublicKey(ctx context.Context) error
	Info(ctx context.Context) error
}

const helpText = "Available commands: keygen, (a)dd, (l)ist, show <id>, verify, pubkey, info, help, exit"

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit"/"quit", or when ctx is cancelled.
// Command errors are reported by the handlers themselves and do not stop
// the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "ak %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			fmt.Fprintln(w, helpText)
		case "keygen":
			_ = a.Keygen(ctx)
		case "a", "add":
			_ = a.Add(ctx)
		case "l", "list":
			_ = a.List(ctx)
		case "show":
			if len(parts) != 2 {
				fmt.Fprintln(w, "Usage: show <id>")
				continue
			}
			_ = a.Show(ctx, parts[1])
		case "verify":
			_ = a.Verify(ctx)
		case "pubkey":
			_ = a.PublicKey(ctx)
		case "info":
			_ = a.Info(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
