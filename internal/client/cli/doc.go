// Package cli provides the interactive vault command-line client.
//
// It wires configuration, the key file, local storage and the vault services
// into a REPL. Typical flow: log in (or register), list credentials, show,
// edit or copy one of them, log out.
//
// Commands:
//   - register / login / logout
//   - list, show <id>, add, edit <id>, delete <id>
//   - copy <id> [user|pass]: put a field on the system clipboard
//   - reconnect: retry opening the vault database
//
// Service errors are rendered with common.UserMessage; the REPL never prints
// provider or driver internals. See App, runREPL.
package cli
