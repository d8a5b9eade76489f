package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/pulse/internal/cipher"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
)

func useTempSettings(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	old := UserPulseSettings
	UserPulseSettings = NewUserSettings(filepath.Join(tempDir, "config"), filepath.Join(tempDir, "data"))
	t.Cleanup(func() { UserPulseSettings = old })
	return tempDir
}

func writeSettings(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(UserPulseSettings.UserConfigsPath, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(UserPulseSettings.SettingsPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	useTempSettings(t)

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.Storage.Backend != BackendFile || settings.Key.Mode != KeyModeLegacy {
		t.Errorf("Unexpected defaults: %+v", settings)
	}
	if settings.KeyPath() != UserPulseSettings.DefaultKeyPath {
		t.Errorf("Expected default key path, got %q", settings.KeyPath())
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	useTempSettings(t)

	settings := DefaultSettings()
	settings.Storage.Backend = BackendSQLite
	settings.Key.Mode = KeyModeKeyFile
	settings.Key.Path = "/tmp/pulse.key"
	settings.Defaults.TaskColor = "#ffeedd"

	if err := SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if *loaded != *settings {
		t.Errorf("Expected %+v, got %+v", settings, loaded)
	}
	if loaded.KeyPath() != "/tmp/pulse.key" {
		t.Errorf("Expected configured key path, got %q", loaded.KeyPath())
	}
}

func TestLoadSettings_PartialFile(t *testing.T) {
	useTempSettings(t)
	writeSettings(t, "[defaults]\ntask_color = \"red\"\n")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.Storage.Backend != BackendFile || settings.Defaults.TaskColor != "red" {
		t.Errorf("Unexpected settings: %+v", settings)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "[storage\nbackend = "},
		{"unknown backend", "[storage]\nbackend = \"postgres\"\n"},
		{"unknown key mode", "[key]\nmode = \"hsm\"\n"},
		{"unknown key", "[storage]\nbackend = \"file\"\ncompress = true\n"},
		{"wrong type", "[storage]\nbackend = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useTempSettings(t)
			writeSettings(t, tt.content)

			if _, err := LoadSettings(); !errors.Is(err, perrors.ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSaveSettings_RejectsInvalid(t *testing.T) {
	useTempSettings(t)

	settings := DefaultSettings()
	settings.Storage.Backend = "nfs"
	if err := SaveSettings(settings); !errors.Is(err, perrors.ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if _, err := os.Stat(UserPulseSettings.SettingsPath); !os.IsNotExist(err) {
		t.Error("Invalid settings should not be written")
	}
}

func TestAppConfig_RoundTripEncrypted(t *testing.T) {
	useTempSettings(t)
	c, err := cipher.Default()
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	store := securefs.New(c)

	cfg, err := LoadAppConfig(store)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.ProjectDataPath != "" {
		t.Errorf("Expected empty config, got %+v", cfg)
	}

	cfg.ProjectDataPath = "/home/ada/pulse"
	if err := SaveAppConfig(store, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	raw, err := os.ReadFile(UserPulseSettings.AppConfigPath)
	if err != nil {
		t.Fatalf("Failed to read app config: %v", err)
	}
	if _, err := cipher.ParseEnvelope(string(raw)); err != nil {
		t.Errorf("App config is not encrypted: %q", raw)
	}

	loaded, err := LoadAppConfig(store)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.ProjectDataPath != "/home/ada/pulse" {
		t.Errorf("Unexpected data path %q", loaded.ProjectDataPath)
	}
}

func TestLoadAppConfig_Corrupt(t *testing.T) {
	useTempSettings(t)
	c, _ := cipher.Default()

	if err := os.MkdirAll(UserPulseSettings.UserConfigsPath, 0700); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(UserPulseSettings.AppConfigPath, []byte(`{"projectDataPath":"/x"}`), 0600); err != nil {
		t.Fatalf("Failed to write app config: %v", err)
	}

	if _, err := LoadAppConfig(securefs.New(c)); !errors.Is(err, perrors.ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}
}

func TestResolveDataPath(t *testing.T) {
	tempDir := t.TempDir()
	flagDir := filepath.Join(tempDir, "flag")
	envDir := filepath.Join(tempDir, "env")
	cfgDir := filepath.Join(tempDir, "cfg")
	for _, d := range []string{flagDir, envDir, cfgDir} {
		if err := os.Mkdir(d, 0700); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
	}
	cfg := &AppConfig{ProjectDataPath: cfgDir}

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(DataPathEnv, envDir)
		got, err := ResolveDataPath(flagDir, cfg)
		if err != nil || got != flagDir {
			t.Errorf("ResolveDataPath = %q, %v; want %q", got, err, flagDir)
		}
	})

	t.Run("env before config", func(t *testing.T) {
		t.Setenv(DataPathEnv, envDir)
		got, err := ResolveDataPath("", cfg)
		if err != nil || got != envDir {
			t.Errorf("ResolveDataPath = %q, %v; want %q", got, err, envDir)
		}
	})

	t.Run("config", func(t *testing.T) {
		t.Setenv(DataPathEnv, "")
		got, err := ResolveDataPath("", cfg)
		if err != nil || got != cfgDir {
			t.Errorf("ResolveDataPath = %q, %v; want %q", got, err, cfgDir)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		t.Setenv(DataPathEnv, "")
		if _, err := ResolveDataPath("", &AppConfig{}); !errors.Is(err, perrors.ErrDataPathNotConfigured) {
			t.Errorf("Expected ErrDataPathNotConfigured, got %v", err)
		}
		if _, err := ResolveDataPath("", nil); !errors.Is(err, perrors.ErrDataPathNotConfigured) {
			t.Errorf("Expected ErrDataPathNotConfigured, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := ResolveDataPath(filepath.Join(tempDir, "gone"), nil); !errors.Is(err, perrors.ErrDataPathMissing) {
			t.Errorf("Expected ErrDataPathMissing, got %v", err)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		file := filepath.Join(tempDir, "file")
		if err := os.WriteFile(file, nil, 0600); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := ResolveDataPath(file, nil); !errors.Is(err, perrors.ErrDataPathMissing) {
			t.Errorf("Expected ErrDataPathMissing, got %v", err)
		}
	})
}
