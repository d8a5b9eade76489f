// Package ui renders pulse's terminal output.
//
// Formatters color text by meaning. With NO_COLOR set, or on a terminal
// without color support, they fall back to plain markers so the meaning
// survives: commands are `backticked`, project, task and person names are
// 'quoted' and record IDs are (parenthesized).
//
//	fmt.Println(ui.Done() + " Added project " + ui.Highlight.Sprint(p.Title) + " " + ui.ID(p.ID))
//
// Board helpers draw task state: Checkbox and Progress for checklists,
// Badges for assignees, Reminder for due dates and Swatch for task colors.
package ui
