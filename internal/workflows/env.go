package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/cipher"
	"github.com/PolarWolf314/pulse/internal/configs"
	"github.com/PolarWolf314/pulse/internal/kvstore"
	"github.com/PolarWolf314/pulse/internal/securefs"
	"github.com/PolarWolf314/pulse/internal/tracker"
)

// EnvOptions configures OpenEnv.
type EnvOptions struct {
	// DataPath overrides $PULSE_DATA_PATH and the app config.
	DataPath string
}

// Env is an opened data directory: the active settings and key, the
// encrypted app config and the record backend.
type Env struct {
	Settings  *configs.Settings
	Cipher    *cipher.Cipher
	Store     *securefs.Store
	AppConfig *configs.AppConfig
	DataPath  string
	Backend   tracker.Backend

	close func() error
}

// OpenEnv loads settings and the key, resolves the data directory and opens
// the configured backend. Callers must Close the returned Env.
func OpenEnv(ctx context.Context, opts EnvOptions) (*Env, error) {
	settings, err := configs.LoadSettings()
	if err != nil {
		return nil, err
	}

	c, _, err := loadCipher(settings, false)
	if err != nil {
		return nil, err
	}
	store := securefs.New(c)

	appConfig, err := configs.LoadAppConfig(store)
	if err != nil {
		return nil, err
	}

	dataPath, err := configs.ResolveDataPath(opts.DataPath, appConfig)
	if err != nil {
		return nil, err
	}

	backend, closeFn, err := openBackend(settings, dataPath, c)
	if err != nil {
		return nil, err
	}

	return &Env{
		Settings:  settings,
		Cipher:    c,
		Store:     store,
		AppConfig: appConfig,
		DataPath:  dataPath,
		Backend:   backend,
		close:     closeFn,
	}, nil
}

// Close releases the backend.
func (e *Env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// Repository returns a board repository over the Env's backend.
func (e *Env) Repository() *tracker.Repository {
	return tracker.NewRepository(e.Backend)
}

// DatabasePath is where the sqlite backend keeps its records.
func DatabasePath(dataPath string) string {
	return filepath.Join(dataPath, audit.Dir, "pulse.db")
}

// loadCipher builds the cipher for the configured key mode. In keyfile mode
// a missing key file is an error unless create is set.
func loadCipher(settings *configs.Settings, create bool) (*cipher.Cipher, bool, error) {
	if settings.Key.Mode != configs.KeyModeKeyFile {
		c, err := cipher.Default()
		return c, false, err
	}

	var (
		key     cipher.Key
		created bool
		err     error
	)
	if create {
		key, created, err = cipher.LoadOrCreateKeyFile(settings.KeyPath())
	} else {
		key, err = cipher.LoadKeyFile(settings.KeyPath())
	}
	if err != nil {
		return nil, false, err
	}

	c, err := cipher.New(key)
	if err != nil {
		return nil, false, err
	}
	return c, created, nil
}

func openBackend(settings *configs.Settings, dataPath string, c *cipher.Cipher) (tracker.Backend, func() error, error) {
	switch settings.Storage.Backend {
	case configs.BackendSQLite:
		kv, err := kvstore.Open(DatabasePath(dataPath), c)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return kvstore.NewBackend(kv), kv.Close, nil
	default:
		return tracker.NewFileBackend(dataPath, securefs.New(c)), nil, nil
	}
}

// resolveDataPath finds the data directory without opening a backend. The
// app config is only decrypted when neither the flag nor the environment
// names a directory.
func resolveDataPath(flagValue string) (string, error) {
	if flagValue != "" || os.Getenv(configs.DataPathEnv) != "" {
		return configs.ResolveDataPath(flagValue, nil)
	}

	settings, err := configs.LoadSettings()
	if err != nil {
		return "", err
	}
	c, _, err := loadCipher(settings, false)
	if err != nil {
		return "", err
	}
	appConfig, err := configs.LoadAppConfig(securefs.New(c))
	if err != nil {
		return "", err
	}
	return configs.ResolveDataPath("", appConfig)
}

// allLoader is implemented by backends that can read every record at once.
type allLoader interface {
	All() (map[string]json.RawMessage, error)
}

// loadRecords reads every stored record. Empty records are left out.
func loadRecords(ctx context.Context, backend tracker.Backend) (map[string]json.RawMessage, error) {
	if l, ok := backend.(allLoader); ok {
		records, err := l.All()
		if err != nil {
			return nil, fmt.Errorf("reading records: %w", err)
		}
		return records, nil
	}

	names, err := backend.Names()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make(map[string]json.RawMessage, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var raw json.RawMessage
		found, err := backend.Load(name, &raw)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if found {
			records[name] = raw
		}
	}
	return records, nil
}
