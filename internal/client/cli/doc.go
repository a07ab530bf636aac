// Package cli provides the interactive teamdb command-line client.
//
// It wires configuration, the local sqlite cache and a services.Session
// into a REPL that works online and offline. Typical flow: the directory
// is reconciled from the server, the pending local entry, the cache or
// the snapshot file; the user browses and edits it; edits are kept as a
// pending local entry until "save" pushes them.
//
// Key features:
//   - Browse people, teams and projects
//   - Add, update and remove entities
//   - Holiday entitlement and urgency per person, absence feed import
//   - Pending changes: save (with conflict detection), discard, reload
//   - Server settings, login and token requests
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and services.Session for details.
package cli
