package configs

import (
	"fmt"
	"os"
	"path/filepath"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
)

// DataPathEnv overrides the configured project data directory.
const DataPathEnv = "PULSE_DATA_PATH"

// AppConfig is shared with the desktop application and stored encrypted.
type AppConfig struct {
	ProjectDataPath string `json:"projectDataPath,omitempty"`
}

// LoadAppConfig decrypts app-config.json. A missing file yields an empty
// config.
func LoadAppConfig(store *securefs.Store) (*AppConfig, error) {
	cfg := &AppConfig{}
	if _, err := store.ReadJSON(UserPulseSettings.AppConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}
	return cfg, nil
}

// SaveAppConfig encrypts and writes app-config.json.
func SaveAppConfig(store *securefs.Store, cfg *AppConfig) error {
	if err := store.WriteJSON(UserPulseSettings.AppConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save app config: %w", err)
	}
	return nil
}

// ResolveDataPath picks the project data directory: an explicit flag value
// first, then $PULSE_DATA_PATH, then the app config. The directory must exist.
func ResolveDataPath(flagValue string, cfg *AppConfig) (string, error) {
	path := flagValue
	if path == "" {
		path = os.Getenv(DataPathEnv)
	}
	if path == "" && cfg != nil {
		path = cfg.ProjectDataPath
	}
	if path == "" {
		return "", perrors.ErrDataPathNotConfigured
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", perrors.ErrIO, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", perrors.ErrDataPathMissing, abs)
		}
		return "", fmt.Errorf("%w: %s: %w", perrors.ErrIO, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", perrors.ErrDataPathMissing, abs)
	}
	return abs, nil
}
