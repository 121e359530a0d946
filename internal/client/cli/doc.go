// Package cli provides the interactive SCAMS command-line client.
//
// It wires configuration, the local session database, the HTTP API client
// and an interactive REPL. On start the stored session is resolved; gated
// commands then pass through the route guard and the role-filtered menu
// before they call the server.
//
// Key features:
//   - register / login / logout, forgot / reset / passwd
//   - me and menu for the signed-in user
//   - dashboard, rooms, find, schedule, book and devices
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
