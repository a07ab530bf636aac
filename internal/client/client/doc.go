// Package client contains the client-side plumbing of teamdb: the HTTP
// client for the directory server and the bootstrap of the local sqlite
// cache (InitDatabase, RunMigrations).
//
// # Error Handling
//
// Fetch and Ping failures wrap ErrUnavailable. Push reports a moved server
// copy as ErrConflict (which also matches common.ErrVersionConflict) and
// every other failure, timeouts included, as a *SaveError matching ErrSave.
package client
