package workflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/configs"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
)

// InspectOptions configures the inspect workflow.
type InspectOptions struct {
	// Path is the encrypted record file to decrypt.
	Path string

	// Raw returns the decrypted text as stored, without parsing it. Records
	// that decrypt but hold invalid JSON can still be inspected this way.
	Raw bool
}

// InspectResult contains the decrypted content of a record file.
type InspectResult struct {
	Path string

	// JSON is the record, indented with two spaces.
	JSON string
}

// Inspect decrypts a single record file with the configured key and returns
// it as indented JSON. Nothing is written except an audit entry.
//
// Returns ErrNoRecords if the file is missing or empty.
// Returns ErrFormat or ErrAuthentication if the file cannot be decrypted.
func Inspect(ctx context.Context, opts InspectOptions) (*InspectResult, error) {
	settings, err := configs.LoadSettings()
	if err != nil {
		return nil, err
	}
	c, _, err := loadCipher(settings, false)
	if err != nil {
		return nil, err
	}

	text, err := inspectFile(securefs.New(c), opts)
	if err != nil {
		return nil, err
	}

	if dataPath, err := resolveDataPath(""); err == nil {
		entry := audit.NewEntry("inspect")
		entry.InputPath = opts.Path
		audit.Log(dataPath, entry)
	}

	return &InspectResult{Path: opts.Path, JSON: text}, nil
}

func inspectFile(store *securefs.Store, opts InspectOptions) (string, error) {
	if opts.Raw {
		text, found, err := store.ReadPlaintext(opts.Path)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("%w: %s is missing or empty", perrors.ErrNoRecords, opts.Path)
		}
		return text, nil
	}

	value, found, err := store.ReadRaw(opts.Path)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s is missing or empty", perrors.ErrNoRecords, opts.Path)
	}

	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", perrors.ErrSerialization, err)
	}
	return string(pretty), nil
}
