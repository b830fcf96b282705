// Package cli provides the interactive user-account command-line client.
//
// It wires configuration, the persistent session cache, the request client
// and the account service behind a small screen router and a REPL. Screens
// under /users are protected: entering one without a session redirects to
// /login and never reaches the network.
//
// Commands:
//   - register, login, logout
//   - users, show <id>, edit <id>, me
//   - status, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// When the cache lives in a file, a background watcher picks up session
// changes made by other client processes sharing it.
package cli
