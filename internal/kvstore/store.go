package kvstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	_ "modernc.org/sqlite"
)

// Sealer turns text into an envelope and back. *cipher.Cipher satisfies it.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// Store is an encrypted key/value table in a SQLite database.
type Store struct {
	db     *sql.DB
	sealer Sealer
	now    func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string, sealer Sealer) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", perrors.ErrIO, filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", perrors.ErrIO, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, sealer: sealer, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %w", perrors.ErrIO, err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_data (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetRaw returns the decrypted JSON text stored under key.
func (s *Store) GetRaw(key string) (string, bool, error) {
	var envelope string
	err := s.db.QueryRow(`SELECT value FROM app_data WHERE key = ?`, key).Scan(&envelope)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: reading %q: %w", perrors.ErrIO, key, err)
	}

	text, err := s.sealer.Decrypt(envelope)
	if err != nil {
		return "", false, fmt.Errorf("decrypting %q: %w", key, err)
	}
	return text, true, nil
}

// Get decodes the value stored under key into dst.
func (s *Store) Get(key string, dst any) (bool, error) {
	text, found, err := s.GetRaw(key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return false, fmt.Errorf("%w: decoding %q: %w", perrors.ErrSerialization, key, err)
	}
	return true, nil
}

// Set stores v under key, replacing any previous value.
func (s *Store) Set(key string, v any) error {
	envelope, err := s.seal(key, v)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO app_data (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, envelope, s.now().Unix()); err != nil {
		return fmt.Errorf("%w: writing %q: %w", perrors.ErrIO, key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM app_data WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: removing %q: %w", perrors.ErrIO, key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM app_data ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing keys: %w", perrors.ErrIO, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: scanning key: %w", perrors.ErrIO, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing keys: %w", perrors.ErrIO, err)
	}
	return keys, nil
}

// All returns every value, decrypted, keyed by name.
func (s *Store) All() (map[string]json.RawMessage, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		text, found, err := s.GetRaw(k)
		if err != nil {
			return nil, err
		}
		if found {
			out[k] = json.RawMessage(text)
		}
	}
	return out, nil
}

// Restore replaces the whole table with data in a single transaction. An
// empty map clears the store.
func (s *Store) Restore(data map[string]json.RawMessage) error {
	sealed := make(map[string]string, len(data))
	for k, v := range data {
		envelope, err := s.seal(k, v)
		if err != nil {
			return err
		}
		sealed[k] = envelope
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin restore: %w", perrors.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM app_data`); err != nil {
		return fmt.Errorf("%w: clearing: %w", perrors.ErrIO, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO app_data (key, value, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare restore: %w", perrors.ErrIO, err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	for k, envelope := range sealed {
		if _, err := stmt.Exec(k, envelope, now); err != nil {
			return fmt.Errorf("%w: restoring %q: %w", perrors.ErrIO, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit restore: %w", perrors.ErrIO, err)
	}
	return nil
}

func (s *Store) seal(key string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: encoding %q: %w", perrors.ErrSerialization, key, err)
	}
	envelope, err := s.sealer.Encrypt(string(data))
	if err != nil {
		return "", fmt.Errorf("encrypting %q: %w", key, err)
	}
	return envelope, nil
}
