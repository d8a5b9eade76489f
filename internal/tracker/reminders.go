package tracker

import (
	"fmt"
	"sort"
	"time"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// DueReminder is a task whose reminder time has passed.
type DueReminder struct {
	Project string
	Task    Task
	At      time.Time
}

// ParseReminder accepts RFC 3339 timestamps, as well as the date-only and
// minute-precision forms the desktop date picker produces.
func ParseReminder(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", perrors.ErrInvalidReminder, s)
}

// DueReminders returns every task with a reminder at or before now, oldest
// first. Tasks whose reminder cannot be parsed are skipped.
func (b *Board) DueReminders(now time.Time) []DueReminder {
	var due []DueReminder
	for _, p := range b.Projects {
		for _, t := range p.Tasks {
			if t.Reminder == "" {
				continue
			}
			at, err := ParseReminder(t.Reminder)
			if err != nil {
				continue
			}
			if !at.After(now) {
				due = append(due, DueReminder{Project: p.Title, Task: t, At: at})
			}
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })
	return due
}
