package workflows

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/PolarWolf314/pulse/internal/tracker"
)

// recordBatch writes records through a backend and remembers which ones it
// changed, so a batch that fails halfway can be put back.
type recordBatch struct {
	backend tracker.Backend

	mu      sync.Mutex
	changed []string
}

func newRecordBatch(backend tracker.Backend) *recordBatch {
	return &recordBatch{backend: backend}
}

func (b *recordBatch) save(name string, v any) error {
	if err := b.backend.Save(name, v); err != nil {
		return err
	}
	b.mark(name)
	return nil
}

func (b *recordBatch) delete(name string) error {
	if err := b.backend.Delete(name); err != nil {
		return err
	}
	b.mark(name)
	return nil
}

func (b *recordBatch) mark(name string) {
	b.mu.Lock()
	b.changed = append(b.changed, name)
	b.mu.Unlock()
}

// undo writes the previous content of every changed record through
// backend. A nil entry in before means the record did not exist and is
// deleted again. Records missing from before are left as they are.
func (b *recordBatch) undo(backend tracker.Backend, before map[string]json.RawMessage) error {
	b.mu.Lock()
	changed := append([]string(nil), b.changed...)
	b.mu.Unlock()
	sort.Strings(changed)

	var errs []error
	for _, name := range changed {
		raw, ok := before[name]
		if !ok {
			continue
		}
		var err error
		if raw == nil {
			err = backend.Delete(name)
		} else {
			err = backend.Save(name, raw)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// snapshotRecords reads the current content of names. Absent records map to
// nil. Records that cannot be read are left out, so undo never writes them.
func snapshotRecords(backend tracker.Backend, names []string) map[string]json.RawMessage {
	before := make(map[string]json.RawMessage, len(names))
	for _, name := range names {
		var raw json.RawMessage
		found, err := backend.Load(name, &raw)
		switch {
		case err != nil:
			continue
		case !found:
			before[name] = nil
		default:
			before[name] = raw
		}
	}
	return before
}
