package ui

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestCheckbox(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Checkbox(true); got != "[x]" {
		t.Errorf("Checkbox(true) = %q", got)
	}
	if got := Checkbox(false); got != "[ ]" {
		t.Errorf("Checkbox(false) = %q", got)
	}
}

func TestProgress(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 4, "[----] 0/0"},
		{0, 4, 4, "[----] 0/4"},
		{1, 4, 4, "[#---] 1/4"},
		{3, 8, 8, "[###-----] 3/8"},
		{4, 4, 4, "[####] 4/4"},
		{5, 4, 4, "[####] 5/4"},
	}
	for _, tt := range tests {
		if got := Progress(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("Progress(%d, %d, %d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestBadges(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := Badges([]string{"AL", "GH"}); got != "'AL' 'GH'" {
		t.Errorf("Badges = %q", got)
	}
	if got := Badges(nil); got != "" {
		t.Errorf("Badges(nil) = %q, want empty", got)
	}
}

func TestReminder(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	want := "⏰ 2024-05-01 09:30"
	if got := Reminder(at, at.Add(time.Hour)); got != want {
		t.Errorf("due Reminder = %q, want %q", got, want)
	}
	if got := Reminder(at, at.Add(-time.Hour)); got != want {
		t.Errorf("upcoming Reminder = %q, want %q", got, want)
	}
}

func TestReminder_DueStandsOut(t *testing.T) {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		t.Skip("NO_COLOR is set in the environment")
	}
	withColor(t)

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	if Reminder(at, at.Add(time.Hour)) == Reminder(at, at.Add(-time.Hour)) {
		t.Error("Due and upcoming reminders render the same")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{"#abcdef", 0xab, 0xcd, 0xef, true},
		{"#fff", 255, 255, 255, true},
		{"hsl(0, 100%, 50%)", 255, 0, 0, true},
		{"hsl(120, 100%, 25%)", 0, 128, 0, true},
		{"hsl(240, 70%, 85%)", 190, 190, 244, true},
		{"#12345", 0, 0, 0, false},
		{"#zzzzzz", 0, 0, 0, false},
		{"teal", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b, ok := parseColor(tt.in)
			if ok != tt.ok || (ok && (r != tt.r || g != tt.g || b != tt.b)) {
				t.Errorf("parseColor(%q) = %d, %d, %d, %v; want %d, %d, %d, %v", tt.in, r, g, b, ok, tt.r, tt.g, tt.b, tt.ok)
			}
		})
	}
}

func TestSwatch(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		if got := Swatch("hsl(200, 70%, 85%)"); got != "hsl(200, 70%, 85%)" {
			t.Errorf("Swatch = %q", got)
		}
	})

	t.Run("Colored", func(t *testing.T) {
		withColor(t)
		if Plain() {
			t.Skip("NO_COLOR is set in the environment")
		}
		got := Swatch("#abcdef")
		if !strings.Contains(got, "■") || !strings.HasSuffix(got, " #abcdef") {
			t.Errorf("Swatch = %q", got)
		}
		if got := Swatch("teal"); got != "teal" {
			t.Errorf("Swatch of an unknown color = %q", got)
		}
	})
}
