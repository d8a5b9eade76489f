package workflows

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/pulse/internal/audit"
	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// LogOptions selects audit log entries. Every filter that is set must match.
type LogOptions struct {
	// DataPath overrides the configured data directory.
	DataPath string

	// Limit keeps the most recent entries only. 0 means no limit.
	Limit int

	// Reverse lists the most recent entry first.
	Reverse bool

	// Operations keeps entries with one of these operations. A group name
	// such as "task" matches every task operation.
	Operations []string

	// Project, Task and Person keep board edits that touched the named
	// project, task or person. Names match case-insensitively.
	Project string
	Task    string
	Person  string

	// Record keeps entries that wrote or read the named record.
	Record string

	// Since and Until bound entries by local calendar day (YYYY-MM-DD),
	// both days included.
	Since string
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the size of the whole log.
	TotalEntriesBeforeFilter int
}

// Log reads the audit log of the data directory and returns the entries
// selected by opts, oldest first unless opts.Reverse is set.
//
// Returns ErrAuditLogNotFound if no audit log exists.
// Returns ErrInvalidDateFormat if Since or Until is not YYYY-MM-DD.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	dataPath, err := resolveDataPath(opts.DataPath)
	if err != nil {
		return nil, err
	}

	keep, err := opts.filter()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(audit.LogPath(dataPath)); os.IsNotExist(err) {
		return nil, perrors.ErrAuditLogNotFound
	}
	entries, err := audit.ReadEntries(dataPath)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{TotalEntriesBeforeFilter: len(entries)}
	for _, e := range entries {
		if keep(e) {
			result.Entries = append(result.Entries, e)
		}
	}

	if opts.Limit > 0 && len(result.Entries) > opts.Limit {
		result.Entries = result.Entries[len(result.Entries)-opts.Limit:]
	}
	if opts.Reverse {
		slices.Reverse(result.Entries)
	}
	return result, nil
}

func (o LogOptions) filter() (func(audit.Entry) bool, error) {
	var checks []func(audit.Entry) bool

	if len(o.Operations) > 0 {
		checks = append(checks, func(e audit.Entry) bool {
			return matchesOperation(e.Operation, o.Operations)
		})
	}
	if o.Project != "" {
		checks = append(checks, func(e audit.Entry) bool { return strings.EqualFold(e.Project, o.Project) })
	}
	if o.Task != "" {
		checks = append(checks, func(e audit.Entry) bool { return strings.EqualFold(e.Task, o.Task) })
	}
	if o.Person != "" {
		checks = append(checks, func(e audit.Entry) bool { return strings.EqualFold(e.Person, o.Person) })
	}
	if o.Record != "" {
		record := strings.TrimSuffix(o.Record, ".json")
		checks = append(checks, func(e audit.Entry) bool { return slices.Contains(e.Records, record) })
	}

	if o.Since != "" {
		since, err := parseDay("--since", o.Since)
		if err != nil {
			return nil, err
		}
		checks = append(checks, func(e audit.Entry) bool {
			t, ok := e.Time()
			return ok && !t.Before(since)
		})
	}
	if o.Until != "" {
		until, err := parseDay("--until", o.Until)
		if err != nil {
			return nil, err
		}
		next := until.AddDate(0, 0, 1)
		checks = append(checks, func(e audit.Entry) bool {
			t, ok := e.Time()
			return ok && t.Before(next)
		})
	}

	return func(e audit.Entry) bool {
		for _, check := range checks {
			if !check(e) {
				return false
			}
		}
		return true
	}, nil
}

func matchesOperation(op string, filters []string) bool {
	op = strings.ToLower(op)
	for _, f := range filters {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && (op == f || strings.HasPrefix(op, f+".")) {
			return true
		}
	}
	return false
}

func parseDay(flag, value string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s wants YYYY-MM-DD, got %q", perrors.ErrInvalidDateFormat, flag, value)
	}
	return day, nil
}

// FormatDetails describes what an entry touched, for the full log view.
func FormatDetails(e audit.Entry) string {
	switch {
	case e.Operation == "export":
		return fmt.Sprintf("%s (%s)", e.OutputPath, formatRecords(e.Records, 3))
	case e.Operation == "import":
		return fmt.Sprintf("%s from %s (%s)", e.Mode, e.InputPath, formatRecords(e.Records, 3))
	case e.Operation == "rekey":
		return fmt.Sprintf("to %s, %s", e.Mode, formatRecords(e.Records, 3))
	case e.Operation == "inspect":
		return e.InputPath
	case e.Operation == "init":
		return fmt.Sprintf("%s backend, %d existing records", e.Backend, e.Count)
	case e.Task != "" && e.Person != "":
		return fmt.Sprintf("%s / %s, %s", e.Project, e.Task, e.Person)
	case e.Task != "":
		return fmt.Sprintf("%s / %s", e.Project, e.Task)
	case e.Person != "":
		return e.Person
	default:
		return e.Project
	}
}

// FormatDetailsOneline is the short form of FormatDetails.
func FormatDetailsOneline(e audit.Entry) string {
	switch {
	case e.Operation == "export":
		return e.OutputPath
	case e.Operation == "import":
		return fmt.Sprintf("%s %d records", e.Mode, e.Count)
	case e.Operation == "rekey":
		return e.Mode
	case e.Operation == "inspect":
		return e.InputPath
	case e.Operation == "init":
		return e.Backend
	case e.Task != "" && e.Person != "":
		return e.Project + "/" + e.Task + " " + e.Person
	case e.Task != "":
		return e.Project + "/" + e.Task
	case e.Person != "":
		return e.Person
	default:
		return e.Project
	}
}

func formatRecords(records []string, limit int) string {
	if len(records) > limit {
		return fmt.Sprintf("%d records", len(records))
	}
	return strings.Join(records, ", ")
}
