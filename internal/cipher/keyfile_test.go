package cipher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

func TestLoadOrCreateKeyFile(t *testing.T) {
	tmpDir := t.TempDir()
	keyPath := filepath.Join(tmpDir, "nested", "key")

	key, created, err := LoadOrCreateKeyFile(keyPath)
	if err != nil {
		t.Fatalf("LoadOrCreateKeyFile failed: %v", err)
	}
	if !created {
		t.Error("Expected a new key to be created")
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("Key file was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}

	again, created, err := LoadOrCreateKeyFile(keyPath)
	if err != nil {
		t.Fatalf("LoadOrCreateKeyFile failed on second call: %v", err)
	}
	if created {
		t.Error("Expected the existing key to be reused")
	}
	if again != key {
		t.Error("Second load returned a different key")
	}
}

func TestLoadKeyFile_Missing(t *testing.T) {
	_, err := LoadKeyFile(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, perrors.ErrKeyFileNotFound) {
		t.Errorf("Expected ErrKeyFileNotFound, got %v", err)
	}
}

func TestLoadKeyFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"not hex", "not-a-key", perrors.ErrFormat},
		{"short", "abcd", perrors.ErrInvalidKeyLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write key file: %v", err)
			}
			if _, err := LoadKeyFile(path); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestKeyFile_EncryptsIndependently(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	c, err := New(key)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	envelope, err := c.Encrypt("per-installation")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	legacy, _ := Default()
	if _, err := legacy.Decrypt(envelope); !errors.Is(err, perrors.ErrAuthentication) {
		t.Errorf("Expected legacy key to fail with ErrAuthentication, got %v", err)
	}
}
