// Package credential provides the persistent key-value slot that holds the
// bearer token between runs.
package credential

import (
	"errors"
	"fmt"
	"path/filepath"
)

// TokenKey is the fixed slot the access token lives under.
const TokenKey = "token"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown credential backend")

// Store is a small persistent key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Clear removes every key.
	Clear() error
	Close() error
}

// Open returns the store for backend rooted at dir. An empty backend means file.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(filepath.Join(dir, "credentials.json"))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "credentials.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
