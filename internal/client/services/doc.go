// Package services contains the application services of the teamdb client:
//
//   - LocalStore: the local entry, cached snapshot, absence feed and server
//     settings kept in the sqlite key/value store.
//   - Tracker: the pending change set.
//   - SyncService: pushes the local entry and clears pending state once the
//     server accepted it.
//   - Reconciler: picks the startup snapshot out of server, local pending,
//     cache and the on-disk file.
//   - Session: owns all of the above plus the live directory.Store and its
//     one-time initialization.
package services
