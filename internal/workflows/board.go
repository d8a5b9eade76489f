package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/tracker"
)

// BoardChange identifies an edit for the audit log.
type BoardChange struct {
	// Operation is the audit operation name, such as "task.add".
	Operation string
	Project   string
	Task      string
	Person    string
}

// UpdateBoard loads the board, applies fn and saves the result. Nothing is
// written if fn returns an error.
func UpdateBoard(ctx context.Context, env *Env, change BoardChange, fn func(*tracker.Board) error) (*tracker.Board, error) {
	repo := env.Repository()

	board, err := repo.LoadBoard()
	if err != nil {
		return nil, err
	}

	if err := fn(board); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := repo.SaveBoard(board); err != nil {
		return nil, fmt.Errorf("saving board: %w", err)
	}

	entry := audit.NewEntry(change.Operation)
	entry.Project = change.Project
	entry.Task = change.Task
	entry.Person = change.Person
	entry.Records = []string{tracker.PeopleRecord, tracker.ProjectsRecord}
	entry.Backend = env.Settings.Storage.Backend
	audit.Log(env.DataPath, entry)

	return board, nil
}
