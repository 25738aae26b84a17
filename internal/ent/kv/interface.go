package kv

import "github.com/dgraph-io/badger/v2"

// KeyVal is a scratch key-value store used by the database build to carry
// monitoring-site IDs between import passes. It is reset on creation.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// GetTransaction returns a write transaction.
	GetTransaction() (*badger.Txn, error)

	// GetValue returns the value stored under a key, or nil when the key
	// is unknown.
	GetValue(key []byte) ([]byte, error)
}
