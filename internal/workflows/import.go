package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/backup"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/utils"
)

// ImportMode represents the import strategy.
type ImportMode int

const (
	// ImportModeReplace removes every existing record, then restores the backup.
	ImportModeReplace ImportMode = iota
	// ImportModeMerge writes the backup's records and keeps records it does not contain.
	ImportModeMerge
)

// String returns the audit name of the mode.
func (m ImportMode) String() string {
	if m == ImportModeMerge {
		return "merge"
	}
	return "replace"
}

// ImportOptions configures the import workflow.
type ImportOptions struct {
	// InputPath is the backup file written by Export or the desktop app.
	InputPath string

	// Passphrase the backup was sealed with.
	Passphrase string

	// Mode is the import strategy (replace or merge).
	Mode ImportMode

	// DryRun validates the backup without changing any record.
	DryRun bool
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	// Records are the names restored from the backup.
	Records []string

	// Removed are existing records deleted in replace mode.
	Removed []string

	// Mode is the import mode used.
	Mode ImportMode

	// DryRun indicates nothing was written.
	DryRun bool
}

// restorer is implemented by backends that can replace all records at once.
type restorer interface {
	Restore(data map[string]json.RawMessage) error
}

// Import restores records from a backup file. A failed import leaves the
// existing records as they were.
//
// Returns ErrWrongPassphrase if the passphrase does not open the backup.
// Returns ErrFormat if the file is not a backup envelope.
// Returns ErrInvalidBundle if the decrypted content fails validation.
func Import(ctx context.Context, env *Env, opts ImportOptions) (*ImportResult, error) {
	raw, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", perrors.ErrIO, opts.InputPath, err)
	}

	text, err := backup.Open(string(raw), opts.Passphrase)
	if err != nil {
		return nil, err
	}

	bundle, err := backup.DecodeBundle(text)
	if err != nil {
		return nil, err
	}

	names := bundle.Names()
	sort.Strings(names)
	for _, name := range names {
		if !utils.IsValidRecordName(name) {
			return nil, fmt.Errorf("%w: invalid record name %q", perrors.ErrInvalidBundle, name)
		}
	}

	result := &ImportResult{Records: names, Mode: opts.Mode, DryRun: opts.DryRun}

	existing, err := env.Backend.Names()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	if opts.Mode == ImportModeReplace {
		for _, name := range existing {
			if _, ok := bundle.Data[name]; !ok {
				result.Removed = append(result.Removed, name)
			}
		}
	}

	if opts.DryRun {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r, ok := env.Backend.(restorer); ok && opts.Mode == ImportModeReplace {
		if err := r.Restore(bundle.Data); err != nil {
			return nil, fmt.Errorf("restoring records: %w", err)
		}
	} else if err := writeBundle(ctx, env.Backend, bundle.Data, names, result.Removed); err != nil {
		return nil, err
	}

	entry := audit.NewEntry("import")
	entry.Records = names
	entry.Mode = opts.Mode.String()
	entry.InputPath = opts.InputPath
	entry.Count = len(names)
	audit.Log(env.DataPath, entry)

	return result, nil
}

// writeBundle saves names and deletes removed one record at a time. If any
// step fails, the records already changed get their previous content back.
func writeBundle(ctx context.Context, backend tracker.Backend, data map[string]json.RawMessage, names, removed []string) error {
	before := snapshotRecords(backend, append(append([]string(nil), names...), removed...))
	batch := newRecordBatch(backend)

	err := func() error {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := batch.save(name, data[name]); err != nil {
				return fmt.Errorf("restoring %s: %w", name, err)
			}
		}
		for _, name := range removed {
			if err := batch.delete(name); err != nil {
				return fmt.Errorf("removing %s: %w", name, err)
			}
		}
		return nil
	}()
	if err == nil {
		return nil
	}

	if undoErr := batch.undo(backend, before); undoErr != nil {
		return fmt.Errorf("%w (rolling back also failed: %w)", err, undoErr)
	}
	return err
}
