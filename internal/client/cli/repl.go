package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Photo(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Pull(ctx context.Context) error
	Stats(ctx context.Context, args []string) error
	Summary(ctx context.Context) error
	Activities(ctx context.Context) error
	Status(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, exit"
	helpLoggedIn  = "Available commands: add, (l)ist [from [to]], show <id>, edit <id>, delete <id>, " +
		"photo <id> <path>, sync, pull, stats [7d|30d|all], summary, activities, profile, passwd, status, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF, on "exit"/"quit", or when ctx is cancelled.
//
// Commands that need an account are refused until the user logs in. Errors
// returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "status":
		return a.Status(ctx)
	}

	run, ok := map[string]func() error{
		"logout":     func() error { return a.Logout(ctx) },
		"profile":    func() error { return a.Profile(ctx) },
		"passwd":     func() error { return a.ChangePassword(ctx) },
		"add":        func() error { return a.Add(ctx) },
		"l":          func() error { return a.List(ctx, args) },
		"list":       func() error { return a.List(ctx, args) },
		"show":       func() error { return a.Show(ctx, args) },
		"edit":       func() error { return a.Edit(ctx, args) },
		"delete":     func() error { return a.Delete(ctx, args) },
		"photo":      func() error { return a.Photo(ctx, args) },
		"sync":       func() error { return a.Sync(ctx) },
		"pull":       func() error { return a.Pull(ctx) },
		"stats":      func() error { return a.Stats(ctx, args) },
		"summary":    func() error { return a.Summary(ctx) },
		"activities": func() error { return a.Activities(ctx) },
	}[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		printlnFn("Please login first")
		return nil
	}
	return run()
}

// describe turns an error into a line for the user.
func describe(err error) string {
	var apiErr *remote.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, common.ErrNetwork):
		return "server unreachable, try again later"
	case errors.Is(err, common.ErrNotFound):
		return "not found"
	}
	return err.Error()
}
