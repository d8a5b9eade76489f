package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/pulse/internal/utils"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // OS user performing the action.
	Host      string `json:"host,omitempty"`
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Records    []string `json:"records,omitempty"`     // For export/import/rekey.
	Project    string   `json:"project,omitempty"`     // For project/task edits.
	Task       string   `json:"task,omitempty"`        // For task edits.
	Person     string   `json:"person,omitempty"`      // For person edits.
	Backend    string   `json:"backend,omitempty"`     // Storage backend in use.
	Mode       string   `json:"mode,omitempty"`        // For import (merge/replace).
	OutputPath string   `json:"output_path,omitempty"` // For export.
	InputPath  string   `json:"input_path,omitempty"`  // For import/inspect.
	Count      int      `json:"count,omitempty"`       // Records touched.
}

// Dir is the hidden metadata directory inside a data directory.
const Dir = ".pulse"

// TimeLayout is the UTC timestamp format of entries.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Time parses the entry timestamp. Plain RFC 3339 timestamps are accepted
// too. ok is false if the timestamp is unreadable.
func (e Entry) Time() (t time.Time, ok bool) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewEntry returns an entry for op with the current user filled in.
func NewEntry(op string) Entry {
	entry := Entry{Operation: op}
	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	if hostname, err := utils.GetHostname(); err == nil {
		entry.Host = hostname
	}
	return entry
}

// Log appends an entry to the audit log of dataDir.
// Operations should not fail just because audit logging failed, so errors
// are swallowed.
func Log(dataDir string, entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeLayout)
	}

	logPath := LogPath(dataDir)
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
// Returns empty string if dataDir is empty.
func LogPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, Dir, "audit.jsonl")
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(dataDir string) ([]Entry, error) {
	logPath := LogPath(dataDir)
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
