// Package cli provides the actionkeeper user-facing commands and the
// interactive shell.
//
// App wraps the capture service and the key vault with terminal I/O: it
// prompts for action fields, hashes evidence files, prints records and audit
// reports. The same methods back both the one-shot cobra subcommands in
// cmd/actionkeeper and the REPL started by App.Shell.
package cli
