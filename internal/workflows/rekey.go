package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/cipher"
	"github.com/PolarWolf314/pulse/internal/configs"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
	"github.com/PolarWolf314/pulse/internal/tracker"
	"golang.org/x/sync/errgroup"
)

// RekeyOptions configures the rekey workflow.
type RekeyOptions struct {
	// DataPath overrides the configured data directory.
	DataPath string

	// To is the key mode after rekeying (legacy or keyfile).
	To string

	// NewKey generates a fresh key file even if one already exists. Only
	// meaningful with To set to keyfile.
	NewKey bool
}

// RekeyResult contains the outcome of a rekey operation.
type RekeyResult struct {
	// From and To are the key modes before and after.
	From string
	To   string

	// KeyPath is the key file now in use, empty in legacy mode.
	KeyPath string

	// KeyCreated is true if a new key file was written.
	KeyCreated bool

	// Records are the re-encrypted record names.
	Records []string
}

// Rekey re-encrypts every record and the app config under a different key,
// then switches settings.toml to the new key mode.
//
// The workflow:
//  1. Decrypts every record and the app config with the current key
//  2. Prepares the new key (a new key file is staged next to the final one)
//  3. Writes every record and the app config under the new key
//  4. Moves the staged key file into place and saves the new key mode
//
// Nothing is written if any record fails to decrypt in step 1. If a later
// step fails, records already rewritten are put back under the current key.
//
// Returns ErrInvalidSettings if To is not a known key mode.
func Rekey(ctx context.Context, opts RekeyOptions) (*RekeyResult, error) {
	if opts.To != configs.KeyModeLegacy && opts.To != configs.KeyModeKeyFile {
		return nil, fmt.Errorf("%w: unknown key mode %q", perrors.ErrInvalidSettings, opts.To)
	}

	env, err := OpenEnv(ctx, EnvOptions{DataPath: opts.DataPath})
	if err != nil {
		return nil, err
	}

	records, err := loadRecords(ctx, env.Backend)
	env.Close()
	if err != nil {
		return nil, err
	}

	settings := env.Settings
	result := &RekeyResult{From: settings.Key.Mode, To: opts.To}

	newKey, stagedKeyPath, err := prepareKey(settings, opts)
	if err != nil {
		return nil, err
	}
	result.KeyCreated = stagedKeyPath != ""
	if opts.To == configs.KeyModeKeyFile {
		result.KeyPath = settings.KeyPath()
	}

	newCipher, err := cipher.New(newKey)
	if err != nil {
		removeStagedKey(stagedKeyPath)
		return nil, err
	}

	newSettings := *settings
	newSettings.Key.Mode = opts.To

	if err := rewriteAll(ctx, env, &newSettings, newCipher, records, stagedKeyPath); err != nil {
		return nil, err
	}

	for name := range records {
		result.Records = append(result.Records, name)
	}
	sort.Strings(result.Records)

	entry := audit.NewEntry("rekey")
	entry.Records = result.Records
	entry.Mode = opts.To
	entry.Count = len(result.Records)
	audit.Log(env.DataPath, entry)

	return result, nil
}

// rewriteAll writes records and the app config under newCipher, installs
// the staged key file and saves newSettings. On failure everything already
// written is put back under the current key and the staged key is removed.
// If that rollback fails too, the staged key is kept and named in the error
// since rewritten records still need it.
func rewriteAll(ctx context.Context, env *Env, newSettings *configs.Settings, newCipher *cipher.Cipher, records map[string]json.RawMessage, stagedKeyPath string) error {
	backend, closeFn, err := openBackend(newSettings, env.DataPath, newCipher)
	if err != nil {
		removeStagedKey(stagedKeyPath)
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	batch := newRecordBatch(backend)
	appConfigWritten := false
	keyInstalled := false

	err = func() error {
		if err := rewriteRecords(ctx, backend, batch, records); err != nil {
			return err
		}
		if err := configs.SaveAppConfig(securefs.New(newCipher), env.AppConfig); err != nil {
			return err
		}
		appConfigWritten = true
		if stagedKeyPath != "" {
			if err := os.Rename(stagedKeyPath, env.Settings.KeyPath()); err != nil {
				return fmt.Errorf("%w: installing key file: %w", perrors.ErrIO, err)
			}
			keyInstalled = true
		}
		if newSettings.Key.Mode != env.Settings.Key.Mode {
			if err := configs.SaveSettings(newSettings); err != nil {
				return err
			}
		}
		return nil
	}()
	if err == nil {
		return nil
	}

	rollbackErr := rollbackRekey(env, batch, records, appConfigWritten)
	if rollbackErr != nil {
		keyPath := stagedKeyPath
		if keyInstalled {
			keyPath = env.Settings.KeyPath()
		}
		if keyPath != "" {
			return fmt.Errorf("%w (rolling back also failed: %w; rewritten records need the key at %s)", err, rollbackErr, keyPath)
		}
		return fmt.Errorf("%w (rolling back also failed: %w)", err, rollbackErr)
	}
	if !keyInstalled {
		removeStagedKey(stagedKeyPath)
	}
	return err
}

func removeStagedKey(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// rewriteRecords saves every record through backend. Backends that can
// restore all records at once do so in a single step.
func rewriteRecords(ctx context.Context, backend tracker.Backend, batch *recordBatch, records map[string]json.RawMessage) error {
	if r, ok := backend.(restorer); ok {
		if err := r.Restore(records); err != nil {
			return fmt.Errorf("re-encrypting records: %w", err)
		}
		for name := range records {
			batch.mark(name)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit(0))
	for name, raw := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := batch.save(name, raw); err != nil {
				return fmt.Errorf("re-encrypting %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// rollbackRekey writes the changed records and the app config back under
// the current key.
func rollbackRekey(env *Env, batch *recordBatch, records map[string]json.RawMessage, appConfigWritten bool) error {
	backend, closeFn, err := openBackend(env.Settings, env.DataPath, env.Cipher)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	var errs []error
	if err := batch.undo(backend, records); err != nil {
		errs = append(errs, err)
	}
	if appConfigWritten {
		if err := configs.SaveAppConfig(env.Store, env.AppConfig); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// prepareKey returns the key to rekey to. A newly generated key is saved to
// a staging path, returned so the caller can install it once every record
// has been rewritten.
func prepareKey(settings *configs.Settings, opts RekeyOptions) (cipher.Key, string, error) {
	if opts.To == configs.KeyModeLegacy {
		return cipher.DefaultKey(), "", nil
	}

	keyPath := settings.KeyPath()
	if !opts.NewKey {
		key, err := cipher.LoadKeyFile(keyPath)
		if err == nil {
			return key, "", nil
		}
		if !errors.Is(err, perrors.ErrKeyFileNotFound) {
			return cipher.Key{}, "", err
		}
	}

	key, err := cipher.GenerateKey()
	if err != nil {
		return cipher.Key{}, "", err
	}
	staged := keyPath + ".new"
	if err := cipher.SaveKeyFile(staged, key); err != nil {
		return cipher.Key{}, "", err
	}
	return key, staged, nil
}
