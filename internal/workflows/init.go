package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/configs"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
	"github.com/PolarWolf314/pulse/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Path is the data directory to use. If empty, defaults to the XDG data
	// directory (~/.local/share/pulse).
	Path string

	// Create makes the directory if it does not exist. Without it a missing
	// directory is ErrDataPathMissing.
	Create bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// DataPath is the absolute data directory now stored in the app config.
	DataPath string

	// DirCreated is true if the directory did not exist before.
	DirCreated bool

	// KeyCreated is true if a new per-installation key was generated.
	KeyCreated bool

	// KeyPath is the key file in use, empty in legacy mode.
	KeyPath string

	// ExistingRecords lists records already present in the directory.
	ExistingRecords []string
}

// Init chooses the data directory and saves it in the encrypted app config.
//
// The same directory may be initialized repeatedly; existing records are
// left untouched and reported in ExistingRecords.
//
// Returns ErrDataPathMissing if the directory does not exist and Create is false.
// Returns ErrIO if the directory cannot be created or written to.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	settings, err := configs.LoadSettings()
	if err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = configs.UserPulseSettings.UserDataPath
	}
	path, err = utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", perrors.ErrIO, path, err)
	}

	result := &InitResult{DataPath: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !opts.Create {
			return nil, fmt.Errorf("%w: %s", perrors.ErrDataPathMissing, path)
		}
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", perrors.ErrIO, path, err)
		}
		result.DirCreated = true
	}

	if err := utils.CheckWritableDir(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", perrors.ErrIO, path, err)
	}

	c, keyCreated, err := loadCipher(settings, true)
	if err != nil {
		return nil, err
	}
	result.KeyCreated = keyCreated
	if settings.Key.Mode == configs.KeyModeKeyFile {
		result.KeyPath = settings.KeyPath()
	}

	store := securefs.New(c)
	appConfig, err := configs.LoadAppConfig(store)
	if err != nil {
		return nil, err
	}
	appConfig.ProjectDataPath = path
	if err := configs.SaveAppConfig(store, appConfig); err != nil {
		return nil, err
	}

	backend, closeFn, err := openBackend(settings, path, c)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		defer closeFn()
	}
	result.ExistingRecords, err = backend.Names()
	if err != nil {
		return nil, err
	}

	entry := audit.NewEntry("init")
	entry.Backend = settings.Storage.Backend
	entry.Count = len(result.ExistingRecords)
	audit.Log(path, entry)

	return result, nil
}
