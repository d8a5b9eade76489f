package cipher

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// GenerateKey returns a new random key.
func GenerateKey() (Key, error) {
	var key Key
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return Key{}, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// LoadKeyFile reads a hex-encoded key written by SaveKeyFile.
// Returns ErrKeyFileNotFound if the file does not exist.
func LoadKeyFile(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Key{}, fmt.Errorf("%w: %s", perrors.ErrKeyFileNotFound, path)
	}
	if err != nil {
		return Key{}, fmt.Errorf("%w: reading key file %s: %w", perrors.ErrIO, path, err)
	}

	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return Key{}, fmt.Errorf("%w: key file %s is not hex: %v", perrors.ErrFormat, path, err)
	}
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("%w: expected %d bytes, got %d bytes", perrors.ErrInvalidKeyLength, KeySize, len(raw))
	}

	var key Key
	copy(key[:], raw)
	return key, nil
}

// SaveKeyFile writes key hex-encoded with 0600 permissions, creating parent
// directories as needed.
func SaveKeyFile(path string, key Key) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: creating key directory: %w", perrors.ErrIO, err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key[:])+"\n"), 0600); err != nil {
		return fmt.Errorf("%w: writing key file %s: %w", perrors.ErrIO, path, err)
	}
	return nil
}

// LoadOrCreateKeyFile returns the key stored at path, generating and saving
// a new one on first use. created reports whether a new key was written.
func LoadOrCreateKeyFile(path string) (key Key, created bool, err error) {
	key, err = LoadKeyFile(path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, perrors.ErrKeyFileNotFound) {
		return Key{}, false, err
	}

	key, err = GenerateKey()
	if err != nil {
		return Key{}, false, err
	}
	if err := SaveKeyFile(path, key); err != nil {
		return Key{}, false, err
	}
	return key, true, nil
}
