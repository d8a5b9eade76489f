package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/backup"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/utils"
)

// ExportOptions configures the export workflow.
type ExportOptions struct {
	// OutputPath is the path for the backup file.
	// If empty, defaults to pulse-backup-YYYY-MM-DD.txt in the working
	// directory, with a numeric suffix if that name is taken.
	OutputPath string

	// Passphrase protects the backup. It is required.
	Passphrase string

	// Now overrides the clock for the bundle timestamp and default name.
	Now func() time.Time
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	// Records are the exported record names.
	Records []string

	// OutputPath is the path to the created backup.
	OutputPath string
}

// Export writes every record to a passphrase-protected backup file.
//
// Returns ErrEmptyPassphrase if no passphrase is given.
// Returns ErrNoRecords if the data directory holds no records.
func Export(ctx context.Context, env *Env, opts ExportOptions) (*ExportResult, error) {
	if opts.Passphrase == "" {
		return nil, perrors.ErrEmptyPassphrase
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	data, err := loadRecords(ctx, env.Backend)
	if err != nil {
		return nil, err
	}
	exported := make([]string, 0, len(data))
	for name := range data {
		exported = append(exported, name)
	}
	sort.Strings(exported)
	if len(exported) == 0 {
		return nil, perrors.ErrNoRecords
	}

	exportedAt := now()
	text, err := backup.NewBundle(data, exportedAt).Marshal()
	if err != nil {
		return nil, err
	}

	sealed, err := backup.Seal(text, opts.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("encrypting backup: %w", err)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = utils.UniquePath(DefaultBackupName(exportedAt))
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", perrors.ErrIO, dir, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(sealed), 0600); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %w", perrors.ErrIO, outputPath, err)
	}

	entry := audit.NewEntry("export")
	entry.Records = exported
	entry.OutputPath = outputPath
	entry.Count = len(exported)
	audit.Log(env.DataPath, entry)

	return &ExportResult{Records: exported, OutputPath: outputPath}, nil
}

// DefaultBackupName is the file name used when no output path is given.
func DefaultBackupName(t time.Time) string {
	return fmt.Sprintf("pulse-backup-%s.txt", t.Format("2006-01-02"))
}
