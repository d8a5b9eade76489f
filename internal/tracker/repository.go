package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/securefs"
	"github.com/bmatcuk/doublestar/v4"
)

// Record names used by the desktop application.
const (
	ProjectsRecord = "projects"
	PeopleRecord   = "people"
)

// Backend persists named JSON records.
type Backend interface {
	// Load decodes the record into dst. found is false when it does not exist.
	Load(name string, dst any) (found bool, err error)
	Save(name string, v any) error
	Delete(name string) error
	// Names lists the stored records in lexical order.
	Names() ([]string, error)
}

// FileBackend stores each record as <Dir>/<name>.json through the encrypted
// file store.
type FileBackend struct {
	Dir   string
	Store *securefs.Store
}

// NewFileBackend returns a FileBackend rooted at dir.
func NewFileBackend(dir string, store *securefs.Store) *FileBackend {
	return &FileBackend{Dir: dir, Store: store}
}

// Path returns the file a record is stored in.
func (b *FileBackend) Path(name string) string {
	return filepath.Join(b.Dir, name+".json")
}

func (b *FileBackend) Load(name string, dst any) (bool, error) {
	return b.Store.ReadJSON(b.Path(name), dst)
}

func (b *FileBackend) Save(name string, v any) error {
	return b.Store.WriteJSON(b.Path(name), v)
}

func (b *FileBackend) Delete(name string) error {
	return b.Store.Remove(b.Path(name))
}

// Names lists the records directly inside Dir. Subdirectories and hidden
// files are not records.
func (b *FileBackend) Names() ([]string, error) {
	if _, err := os.Stat(b.Dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %w", perrors.ErrIO, b.Dir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(b.Dir), "*.json", doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", perrors.ErrIO, b.Dir, err)
	}

	var names []string
	for _, m := range matches {
		if strings.HasPrefix(m, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(m, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Repository loads and saves the whole board.
type Repository struct {
	backend Backend
}

// NewRepository returns a Repository over backend.
func NewRepository(backend Backend) *Repository {
	return &Repository{backend: backend}
}

// LoadBoard reads projects and people. Missing records yield empty lists;
// any other failure is returned so corrupt data is never replaced by an
// empty board on the next save.
func (r *Repository) LoadBoard() (*Board, error) {
	board := &Board{}
	if _, err := r.backend.Load(ProjectsRecord, &board.Projects); err != nil {
		return nil, fmt.Errorf("loading %s: %w", ProjectsRecord, err)
	}
	if _, err := r.backend.Load(PeopleRecord, &board.People); err != nil {
		return nil, fmt.Errorf("loading %s: %w", PeopleRecord, err)
	}
	board.Normalize()
	return board, nil
}

// SaveBoard writes projects and people.
func (r *Repository) SaveBoard(board *Board) error {
	board.Normalize()
	if err := r.backend.Save(ProjectsRecord, board.Projects); err != nil {
		return fmt.Errorf("saving %s: %w", ProjectsRecord, err)
	}
	if err := r.backend.Save(PeopleRecord, board.People); err != nil {
		return fmt.Errorf("saving %s: %w", PeopleRecord, err)
	}
	return nil
}
