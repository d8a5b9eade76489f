package securefs

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/PolarWolf314/pulse/internal/cipher"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := cipher.Default()
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	return New(c)
}

func TestWriteReadJSON_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	tmpDir := t.TempDir()

	tests := []struct {
		name  string
		value any
	}{
		{"object", map[string]any{"a": float64(1), "b": []any{float64(2), float64(3)}}},
		{"array", []any{"x", true, nil}},
		{"string", "hello <world> & co"},
		{"number", 3.5},
		{"null", nil},
		{"empty object", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := store.WriteJSON(path, tt.value); err != nil {
				t.Fatalf("WriteJSON failed: %v", err)
			}

			got, found, err := store.ReadRaw(path)
			if err != nil {
				t.Fatalf("ReadRaw failed: %v", err)
			}
			if !found {
				t.Fatal("Expected record to be found")
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("Expected %#v, got %#v", tt.value, got)
			}
		})
	}
}

func TestWriteJSON_CreatesIntermediateDirectories(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "x", "y", "data.json")

	type record struct {
		A int   `json:"a"`
		B []int `json:"b"`
	}
	want := record{A: 1, B: []int{2, 3}}

	if err := store.WriteJSON(path, want); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("Expected intermediate directories to exist: %v", err)
	}

	var got record
	found, err := store.ReadJSON(path, &got)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if !found || !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v (found=%v)", want, got, found)
	}
}

func TestWriteJSON_FileIsEnvelope(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "projects.json")

	if err := store.WriteJSON(path, []string{"secret project"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "secret project") {
		t.Error("File contains plaintext")
	}
	if strings.HasSuffix(content, "\n") {
		t.Error("File should not end with a newline")
	}
	if parts := strings.Split(content, ":"); len(parts) != 3 {
		t.Errorf("Expected 3 envelope segments, got %d", len(parts))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}

func TestWriteJSON_PrettyPrinted(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "config.json")

	if err := store.WriteJSON(path, map[string]string{"projectDataPath": "/data/<pulse>"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	plaintext, found, err := store.ReadPlaintext(path)
	if err != nil || !found {
		t.Fatalf("ReadPlaintext failed: found=%v err=%v", found, err)
	}
	want := "{\n  \"projectDataPath\": \"/data/<pulse>\"\n}"
	if plaintext != want {
		t.Errorf("Expected %q, got %q", want, plaintext)
	}
}

func TestWriteJSON_OverwritesExisting(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "people.json")

	if err := store.WriteJSON(path, []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if err := store.WriteJSON(path, []string{"Charlie"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var got []string
	if _, err := store.ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Charlie"}) {
		t.Errorf("Expected [Charlie], got %v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestWriteJSON_SerializationError(t *testing.T) {
	store := newTestStore(t)
	tmpDir := t.TempDir()

	tests := []struct {
		name  string
		value any
	}{
		{"channel", make(chan int)},
		{"nan", math.NaN()},
		{"func", func() {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".json")
			err := store.WriteJSON(path, tt.value)
			if !errors.Is(err, perrors.ErrSerialization) {
				t.Fatalf("Expected ErrSerialization, got %v", err)
			}
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Error("Nothing should be written when serialization fails")
			}
		})
	}
}

func TestWriteJSON_DirectoryCreationFails(t *testing.T) {
	store := newTestStore(t)
	tmpDir := t.TempDir()

	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0600); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	err := store.WriteJSON(filepath.Join(blocker, "sub", "data.json"), map[string]int{"a": 1})
	if !errors.Is(err, perrors.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestReadJSON_Absent(t *testing.T) {
	store := newTestStore(t)

	var v any
	found, err := store.ReadJSON(filepath.Join(t.TempDir(), "never-written.json"), &v)
	if err != nil {
		t.Fatalf("Expected no error for a missing file, got %v", err)
	}
	if found {
		t.Error("Expected found=false for a missing file")
	}
}

func TestReadJSON_AfterRemove(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.json")

	if err := store.WriteJSON(path, []int{1}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove(path); err != nil {
		t.Fatalf("Removing a missing file should succeed, got %v", err)
	}

	var v any
	found, err := store.ReadJSON(path, &v)
	if err != nil || found {
		t.Errorf("Expected found=false and no error, got found=%v err=%v", found, err)
	}
}

func TestReadJSON_EmptyFile(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}

	var v any
	found, err := store.ReadJSON(path, &v)
	if err != nil {
		t.Fatalf("Expected no error for an empty file, got %v", err)
	}
	if found {
		t.Error("Expected found=false for an empty file")
	}
}

func TestReadJSON_TrailingNewlineTolerated(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.json")

	if err := store.WriteJSON(path, []int{7}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}

	var got []int
	if _, err := store.ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("Expected [7], got %v", got)
	}
}

func TestReadJSON_CorruptionIsAnError(t *testing.T) {
	store := newTestStore(t)
	tmpDir := t.TempDir()

	valid := filepath.Join(tmpDir, "valid.json")
	if err := store.WriteJSON(valid, map[string]int{"a": 1}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	data, _ := os.ReadFile(valid)
	tampered := []byte(string(data))
	last := len(tampered) - 1
	if tampered[last] == '0' {
		tampered[last] = '1'
	} else {
		tampered[last] = '0'
	}

	tests := []struct {
		name    string
		content []byte
		want    error
	}{
		{"plaintext json", []byte(`{"a":1}`), perrors.ErrFormat},
		{"bad iv", []byte("abcd:" + strings.Repeat("00", 16) + ":00"), perrors.ErrFormat},
		{"tampered", tampered, perrors.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, tt.content, 0600); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			var v any
			found, err := store.ReadJSON(path, &v)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if found {
				t.Error("Corrupted data must not be reported as found")
			}
		})
	}
}

func TestReadJSON_WrongKey(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.json")
	if err := store.WriteJSON(path, []int{1, 2}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	other, err := cipher.New(cipher.DeriveKey("changed passphrase"))
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}

	var v any
	if _, err := New(other).ReadJSON(path, &v); !errors.Is(err, perrors.ErrAuthentication) {
		t.Errorf("Expected ErrAuthentication, got %v", err)
	}
}

func TestReadJSON_InvalidJSONPayload(t *testing.T) {
	c, err := cipher.Default()
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	store := New(c)
	path := filepath.Join(t.TempDir(), "data.json")

	envelope, err := c.Encrypt("{not json")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(envelope), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var v any
	if _, err := store.ReadJSON(path, &v); !errors.Is(err, perrors.ErrSerialization) {
		t.Errorf("Expected ErrSerialization, got %v", err)
	}
}

func TestReadJSON_DirectoryIsIOError(t *testing.T) {
	store := newTestStore(t)

	var v any
	_, err := store.ReadJSON(t.TempDir(), &v)
	if !errors.Is(err, perrors.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestWriteJSON_ConcurrentWritersSamePath(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "projects.json")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := store.WriteJSON(path, map[string]int{"writer": n}); err != nil {
				t.Errorf("WriteJSON failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var got map[string]int
	found, err := store.ReadJSON(path, &got)
	if err != nil || !found {
		t.Fatalf("Expected a readable record, got found=%v err=%v", found, err)
	}
	if _, ok := got["writer"]; !ok {
		t.Errorf("Unexpected record content: %v", got)
	}
	if len(store.locks.locks) != 0 {
		t.Errorf("Expected path locks to be released, %d remain", len(store.locks.locks))
	}
}
