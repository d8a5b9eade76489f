package kvstore

import (
	"encoding/json"

	"github.com/PolarWolf314/pulse/internal/tracker"
)

var _ tracker.Backend = (*Backend)(nil)

// Backend exposes a Store as tracker records, one key per record.
type Backend struct {
	Store *Store
}

// NewBackend wraps store.
func NewBackend(store *Store) *Backend {
	return &Backend{Store: store}
}

func (b *Backend) Load(name string, dst any) (bool, error) { return b.Store.Get(name, dst) }

func (b *Backend) Save(name string, v any) error { return b.Store.Set(name, v) }

func (b *Backend) Delete(name string) error { return b.Store.Remove(name) }

func (b *Backend) Names() ([]string, error) { return b.Store.Keys() }

// All reads every record in one pass.
func (b *Backend) All() (map[string]json.RawMessage, error) { return b.Store.All() }

// Restore replaces every record at once.
func (b *Backend) Restore(data map[string]json.RawMessage) error { return b.Store.Restore(data) }
