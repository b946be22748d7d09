// Package cli provides the interactive moodkeeper command-line client.
//
// It wires the local store, the sync services and an interactive REPL. Every
// write lands in the local journal first, so the REPL keeps working while the
// server is unreachable; a background watcher probes the server and pushes
// pending entries when it comes back.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
