package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter styles one kind of output. Without color it wraps the text in
// plain markers instead.
type Formatter struct {
	attr  color.Attribute
	open  string
	close string
}

func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if Plain() {
		return f.open + text + f.close
	}
	return color.New(f.attr).Sprint(text)
}

// Plain reports whether output is uncolored: NO_COLOR is set, or
// fatih/color found no color support (not a TTY, TERM=dumb).
func Plain() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code marks commands to run, `backticked` without color.
	Code = Formatter{color.FgYellow, "`", "`"}
	Path = Formatter{attr: color.FgYellow}
	Flag = Formatter{attr: color.FgYellow}

	Success = Formatter{attr: color.FgGreen}
	Error   = Formatter{attr: color.FgRed}
	Warning = Formatter{attr: color.FgYellow}
	Info    = Formatter{attr: color.FgCyan}

	// Highlight marks project, task and person names, 'quoted' without color.
	Highlight = Formatter{color.FgCyan, "'", "'"}

	// Muted marks record IDs and other secondary details, (parenthesized)
	// without color.
	Muted = Formatter{color.FgHiBlack, "(", ")"}
)

// Result markers that open a line of command output.
func Done() string    { return Success.Sprint("✓") }
func Failed() string  { return Error.Sprint("✗") }
func Caution() string { return Warning.Sprint("⚠") }
func Next() string    { return Info.Sprint("→") }

// EnsureNewline appends a newline to s unless it already ends with one.
func EnsureNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
