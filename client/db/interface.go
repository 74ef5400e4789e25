// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package db

import "context"

// DB is an interface that must be satisfied by the client's persistent
// storage manager.
type DB interface {
	// Run waits for context cancellation and closes the database.
	Run(ctx context.Context)
	// Store allows the storage of arbitrary data.
	Store(string, []byte) error
	// Get retrieves values stored with Store. ErrNotFound is returned if
	// there is no value for the key.
	Get(string) ([]byte, error)
	// ValueExists checks if a value was previously stored.
	ValueExists(k string) (bool, error)
	// Close closes the database.
	Close() error
}
