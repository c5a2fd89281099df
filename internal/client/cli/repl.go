package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// errUsage marks a malformed command line; the handler already printed usage.
var errUsage = errors.New("usage")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Copy(ctx context.Context, args []string) error
	Reconnect(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done.
//
// Prompt & Commands
//
//	Not logged in:
//	  - help:                    show available commands
//	  - register:                create an account
//	  - login:                   authenticate
//	  - reconnect:               retry opening the vault database
//	  - exit | quit:             leave the program
//
//	Logged in:
//	  - help:                    show available commands
//	  - (l)ist:                  list credentials
//	  - show <id>:               show one credential with its password
//	  - add:                     add a credential
//	  - edit <id>:               change username and password
//	  - delete <id>:             delete a credential
//	  - copy <id> [user|pass]:   copy a field to the clipboard
//	  - logout:                  log out
//	  - exit | quit:             leave the program
//
// Handler errors are rendered with common.UserMessage and do not stop the
// loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("vault%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, copy <id> [user|pass], logout, exit")
			} else {
				printlnFn("Available commands: register, login, reconnect, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "add":
			cmdErr = a.Add(ctx)

		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "copy":
			cmdErr = a.Copy(ctx, args)

		case "reconnect":
			cmdErr = a.Reconnect(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil && !errors.Is(cmdErr, errUsage) {
			printlnFn("Error:", common.UserMessage(cmdErr))
		}
	}
}
