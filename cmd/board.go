package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
)

// progressWidth is the bar width used by list output.
const progressWidth = 10

// updateBoard runs edit inside workflows.UpdateBoard behind a spinner. The
// message edit returns becomes the spinner's final message.
func updateBoard(spinnerMessage string, change workflows.BoardChange, edit func(*tracker.Board) (string, error)) error {
	spinner, cleanup := startSpinner(spinnerMessage, verbose)
	defer cleanup()

	env, err := openEnv()
	if err != nil {
		return failWith(spinner, err)
	}
	defer env.Close()

	var finalMessage string
	_, err = workflows.UpdateBoard(context.Background(), env, change, func(b *tracker.Board) error {
		msg, err := edit(b)
		finalMessage = msg
		return err
	})
	if err != nil {
		return failWith(spinner, err)
	}

	Logger.Infof("Saved board after %s", change.Operation)
	spinner.FinalMSG = finalMessage
	return nil
}

// viewBoard loads the board and hands it to show. Errors are printed the
// same way updateBoard reports them.
func viewBoard(show func(*tracker.Board) error) error {
	env, err := openEnv()
	if err != nil {
		return printError(err)
	}
	defer env.Close()

	board, err := env.Repository().LoadBoard()
	if err != nil {
		return printError(err)
	}
	Logger.Debugf("Loaded %d projects and %d people", len(board.Projects), len(board.People))

	if err := show(board); err != nil {
		return printError(err)
	}
	return nil
}

func printError(err error) error {
	msg, unexpected := formatError(err)
	fmt.Println(msg)
	if unexpected {
		return err
	}
	return nil
}

// projectProgress sums the checklist items of every task in p.
func projectProgress(p tracker.Project) (done, total int) {
	for _, t := range p.Tasks {
		done += t.Completed()
		total += len(t.Items)
	}
	return done, total
}

// assigneeInitials returns the initials of the people assigned to t.
func assigneeInitials(b *tracker.Board, t tracker.Task) []string {
	var initials []string
	for _, id := range t.AssignedPersons {
		if p, err := b.FindPerson(id); err == nil {
			initials = append(initials, p.Initials)
		}
	}
	return initials
}

// resolveItem accepts an item ID or its 1-based position in the checklist.
func resolveItem(t *tracker.Task, ref string) string {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(t.Items) {
		return t.Items[n-1].ID
	}
	return ref
}

func printTask(b *tracker.Board, t tracker.Task, withItems bool) {
	line := fmt.Sprintf("  %s %s  %s", ui.Checkbox(t.Done()), t.Title, ui.Progress(t.Completed(), len(t.Items), progressWidth))
	if initials := assigneeInitials(b, t); len(initials) > 0 {
		line += "  " + ui.Badges(initials)
	}
	if t.Reminder != "" {
		if at, err := tracker.ParseReminder(t.Reminder); err == nil {
			line += "  " + ui.Reminder(at, remindNow())
		}
	}
	fmt.Println(line + "  " + ui.ID(t.ID))

	if !withItems {
		return
	}
	for i, item := range t.Items {
		fmt.Printf("      %d. %s %s  %s\n", i+1, ui.Checkbox(item.Completed), item.Text, ui.ID(item.ID))
	}
}
