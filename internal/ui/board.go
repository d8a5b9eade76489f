package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ReminderLayout is how reminder times are shown.
const ReminderLayout = "2006-01-02 15:04"

// Checkbox renders a checklist marker.
func Checkbox(done bool) string {
	if done {
		return Success.Sprint("[x]")
	}
	return "[ ]"
}

// Progress renders a fixed-width bar and a done/total count, such as
// "[###-----] 3/8". A total of zero renders an empty bar.
func Progress(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
	}

	bar := "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
	if total > 0 && done >= total {
		bar = Success.Sprint(bar)
	}
	return fmt.Sprintf("%s %d/%d", bar, done, total)
}

// ID renders a record ID.
func ID(id string) string {
	return Muted.Sprint(id)
}

// Badges renders one badge per assignee initials.
func Badges(initials []string) string {
	badges := make([]string, len(initials))
	for i, in := range initials {
		badges[i] = Highlight.Sprint(in)
	}
	return strings.Join(badges, " ")
}

// Reminder renders a reminder time in local time. Due reminders stand out.
func Reminder(at, now time.Time) string {
	text := "⏰ " + at.Local().Format(ReminderLayout)
	if at.After(now) {
		return Info.Sprint(text)
	}
	return Warning.Sprint(text)
}

// Swatch renders a task color as a colored square followed by its value.
// Colors other than #rgb, #rrggbb and hsl(h, s%, l%) are shown as text only.
func Swatch(value string) string {
	if Plain() {
		return value
	}
	r, g, b, ok := parseColor(value)
	if !ok {
		return value
	}
	return color.RGB(r, g, b).Sprint("■") + " " + value
}

func parseColor(value string) (r, g, b int, ok bool) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "#") {
		return parseHex(value[1:])
	}

	var h, s, l float64
	if n, err := fmt.Sscanf(value, "hsl(%g, %g%%, %g%%)", &h, &s, &l); err != nil || n != 3 {
		return 0, 0, 0, false
	}
	r, g, b = hslToRGB(h, s/100, l/100)
	return r, g, b, true
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func hslToRGB(h, s, l float64) (r, g, b int) {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	scale := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return scale(rf), scale(gf), scale(bf)
}
