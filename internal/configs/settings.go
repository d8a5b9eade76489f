package configs

import (
	"log"
	"os"
	"path/filepath"
)

// UserSettings holds the per-user locations pulse reads and writes.
type UserSettings struct {
	UserConfigsPath string // <UserConfigDir>/pulse
	SettingsPath    string // settings.toml
	AppConfigPath   string // app-config.json, encrypted
	DefaultKeyPath  string // per-installation key in keyfile mode
	UserDataPath    string // $XDG_DATA_HOME/pulse
}

var UserPulseSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	UserPulseSettings = NewUserSettings(filepath.Join(configDir, "pulse"), filepath.Join(dataDir, "pulse"))
}

// NewUserSettings lays out the standard files under configPath.
func NewUserSettings(configPath, dataPath string) *UserSettings {
	return &UserSettings{
		UserConfigsPath: configPath,
		SettingsPath:    filepath.Join(configPath, "settings.toml"),
		AppConfigPath:   filepath.Join(configPath, "app-config.json"),
		DefaultKeyPath:  filepath.Join(configPath, "key"),
		UserDataPath:    dataPath,
	}
}
