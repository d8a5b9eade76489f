package configs

import (
	"fmt"
	"os"
	"strings"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Key modes.
const (
	KeyModeLegacy  = "legacy"
	KeyModeKeyFile = "keyfile"
)

// Settings is the user-editable settings.toml.
type Settings struct {
	Storage  StorageSettings  `toml:"storage" json:"storage"`
	Key      KeySettings      `toml:"key" json:"key"`
	Defaults DefaultsSettings `toml:"defaults" json:"defaults"`
}

type StorageSettings struct {
	Backend string `toml:"backend" json:"backend"`
}

type KeySettings struct {
	Mode string `toml:"mode" json:"mode"`
	Path string `toml:"path" json:"path"`
}

type DefaultsSettings struct {
	// TaskColor is used for new projects. Empty picks a random pastel.
	TaskColor string `toml:"task_color" json:"task_color"`
}

// DefaultSettings returns the settings used when settings.toml is absent.
func DefaultSettings() *Settings {
	return &Settings{
		Storage: StorageSettings{Backend: BackendFile},
		Key:     KeySettings{Mode: KeyModeLegacy},
	}
}

// LoadSettings reads settings.toml, falling back to defaults for a missing
// file or missing keys.
func LoadSettings() (*Settings, error) {
	settings := DefaultSettings()

	if _, err := os.Stat(UserPulseSettings.SettingsPath); os.IsNotExist(err) {
		return settings, nil
	}

	md, err := LoadTOML(UserPulseSettings.SettingsPath, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidSettings, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", perrors.ErrInvalidSettings, strings.Join(keys, ", "))
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings writes settings.toml.
func SaveSettings(settings *Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(UserPulseSettings.SettingsPath, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Validate rejects unknown backends and key modes. Empty values are
// replaced by their defaults.
func (s *Settings) Validate() error {
	switch s.Storage.Backend {
	case "":
		s.Storage.Backend = BackendFile
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", perrors.ErrInvalidSettings, s.Storage.Backend)
	}

	switch s.Key.Mode {
	case "":
		s.Key.Mode = KeyModeLegacy
	case KeyModeLegacy, KeyModeKeyFile:
	default:
		return fmt.Errorf("%w: unknown key mode %q", perrors.ErrInvalidSettings, s.Key.Mode)
	}
	return nil
}

// KeyPath returns the key file location for keyfile mode.
func (s *Settings) KeyPath() string {
	if s.Key.Path != "" {
		return s.Key.Path
	}
	return UserPulseSettings.DefaultKeyPath
}
