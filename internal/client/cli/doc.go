// Package cli provides the interactive yama command-line client.
//
// It runs a REPL over the file tree of the backend: log in, browse
// directories, print or render markdown files, upload files and manage
// directories. The REPL is started via App.Run(ctx), which blocks until the
// user exits or input ends.
//
// Key features:
//   - login / logout / whoami
//   - ls, cat, render (sanitized HTML of a markdown file)
//   - put, mkdir, rm
package cli
