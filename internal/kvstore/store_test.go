package kvstore

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/PolarWolf314/pulse/internal/cipher"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/tracker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := cipher.Default()
	if err != nil {
		t.Fatalf("Failed to create cipher: %v", err)
	}
	s, err := Open(filepath.Join(t.TempDir(), "nested", "pulse.db"), c)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := openTestStore(t)

	var missing []string
	found, err := s.Get("people", &missing)
	if err != nil || found {
		t.Fatalf("Get on empty store = %v, %v", found, err)
	}

	if err := s.Set("people", []string{"alice"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("people", []string{"alice", "bob"}); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}

	var got []string
	found, err = s.Get("people", &got)
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("Unexpected value %v", got)
	}
}

func TestStore_ValuesAreEncrypted(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set("secret", "plain text value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var stored string
	if err := s.db.QueryRow(`SELECT value FROM app_data WHERE key = 'secret'`).Scan(&stored); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := cipher.ParseEnvelope(stored); err != nil {
		t.Errorf("Stored value is not an envelope: %q", stored)
	}

	if _, err := s.db.Exec(`UPDATE app_data SET value = 'garbage' WHERE key = 'secret'`); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	var v string
	if _, err := s.Get("secret", &v); !errors.Is(err, perrors.ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}
}

func TestStore_RemoveKeys(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"b", "a", "c"} {
		if err := s.Set(k, k); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected keys %v", keys)
	}

	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove of missing key failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	want := map[string]json.RawMessage{"a": json.RawMessage(`"a"`), "c": json.RawMessage(`"c"`)}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("All = %v, want %v", all, want)
	}

	if err := s.Restore(nil); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	keys, _ = s.Keys()
	if len(keys) != 0 {
		t.Errorf("Expected no keys after restoring nothing, got %v", keys)
	}
}

func TestStore_Restore(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set("stale", true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data := map[string]json.RawMessage{
		"projects": json.RawMessage(`[{"id":"p1","title":"One","tasks":[],"taskColor":"#fff"}]`),
		"people":   json.RawMessage(`[]`),
	}
	if err := s.Restore(data); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if !reflect.DeepEqual(all, data) {
		t.Errorf("All after Restore = %v", all)
	}
}

func TestStore_RestoreRejectsInvalidJSON(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set("keep", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	err := s.Restore(map[string]json.RawMessage{"bad": json.RawMessage(`{`)})
	if !errors.Is(err, perrors.ErrSerialization) {
		t.Fatalf("Expected ErrSerialization, got %v", err)
	}

	var v int
	if found, err := s.Get("keep", &v); err != nil || !found || v != 1 {
		t.Errorf("Existing data changed after failed restore: %v %v %v", v, found, err)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	c, _ := cipher.Default()
	path := filepath.Join(t.TempDir(), "pulse.db")

	s, err := Open(path, c)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s, err = Open(path, c)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	var v string
	if found, err := s.Get("k", &v); err != nil || !found || v != "v" {
		t.Errorf("Get after reopen = %q, %v, %v", v, found, err)
	}
}

func TestBackend_Repository(t *testing.T) {
	backend := NewBackend(openTestStore(t))
	repo := tracker.NewRepository(backend)

	board := &tracker.Board{}
	p, _ := board.AddProject("Chores", "#eee")
	if _, err := board.AddTask(p.ID, "Dishes"); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if err := repo.SaveBoard(board); err != nil {
		t.Fatalf("SaveBoard failed: %v", err)
	}

	loaded, err := repo.LoadBoard()
	if err != nil {
		t.Fatalf("LoadBoard failed: %v", err)
	}
	if !reflect.DeepEqual(board, loaded) {
		t.Errorf("Round trip mismatch:\nsaved:  %+v\nloaded: %+v", board, loaded)
	}

	all, err := backend.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if _, ok := all[tracker.ProjectsRecord]; !ok || len(all) != 2 {
		t.Errorf("Expected projects and people records, got %v", all)
	}
}
