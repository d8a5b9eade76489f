package utils

import (
	"regexp"
	"strings"

	"github.com/PolarWolf314/pulse/internal/ui"
)

// MaxRecordNameLength leaves room for the .json extension and the temp
// file suffix within common 255-byte file name limits.
const MaxRecordNameLength = 200

var recordNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidRecordName reports whether name can be used as a record file name:
// alphanumerics, dots, hyphens and underscores, not starting with a dot and
// at most MaxRecordNameLength bytes.
func IsValidRecordName(name string) bool {
	if name == "" || len(name) > MaxRecordNameLength || strings.Contains(name, "..") {
		return false
	}
	return recordNamePattern.MatchString(name)
}
