package securefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// Sealer turns text into an envelope and back. *cipher.Cipher satisfies it.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// Store reads and writes one encrypted JSON value per file.
type Store struct {
	sealer   Sealer
	locks    *pathLocks
	fileMode os.FileMode
	dirMode  os.FileMode
}

// New creates a Store that encrypts with sealer.
func New(sealer Sealer) *Store {
	return &Store{
		sealer:   sealer,
		locks:    newPathLocks(),
		fileMode: 0600,
		dirMode:  0700,
	}
}

// WriteJSON serializes value as indented JSON, encrypts it and replaces the
// file at path, creating parent directories as needed. The previous content
// stays intact if any step fails.
func (s *Store) WriteJSON(path string, value any) error {
	data, err := marshalIndent(value)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", perrors.ErrSerialization, path, err)
	}

	envelope, err := s.sealer.Encrypt(string(data))
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", path, err)
	}

	unlock := s.locks.lock(path)
	defer unlock()

	return writeFileAtomic(path, []byte(envelope), s.fileMode, s.dirMode)
}

// ReadJSON decrypts the file at path into dst.
//
// A missing or empty file reports found=false with a nil error: there is no
// data yet. Every other problem is returned, including ErrFormat and
// ErrAuthentication from decryption, so corruption is never mistaken for
// absence.
func (s *Store) ReadJSON(path string, dst any) (found bool, err error) {
	plaintext, found, err := s.open(path)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal([]byte(plaintext), dst); err != nil {
		return false, fmt.Errorf("%w: decoding %s: %w", perrors.ErrSerialization, path, err)
	}
	return true, nil
}

// ReadRaw decrypts the file at path into a generic JSON value.
func (s *Store) ReadRaw(path string) (any, bool, error) {
	var value any
	found, err := s.ReadJSON(path, &value)
	if err != nil || !found {
		return nil, found, err
	}
	return value, true, nil
}

// ReadPlaintext returns the decrypted JSON text of the file at path without
// parsing it.
func (s *Store) ReadPlaintext(path string) (string, bool, error) {
	return s.open(path)
}

// Remove deletes the record file at path. A missing file is not an error.
func (s *Store) Remove(path string) error {
	unlock := s.locks.lock(path)
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %w", perrors.ErrIO, path, err)
	}
	return nil
}

func (s *Store) open(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: reading %s: %w", perrors.ErrIO, path, err)
	}

	envelope := strings.TrimRight(string(data), "\r\n")
	if envelope == "" {
		return "", false, nil
	}

	plaintext, err := s.sealer.Decrypt(envelope)
	if err != nil {
		return "", false, fmt.Errorf("decrypting %s: %w", path, err)
	}
	return plaintext, true, nil
}

// marshalIndent matches JSON.stringify(value, null, 2): two-space indent, no
// HTML escaping, no trailing newline.
func marshalIndent(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
