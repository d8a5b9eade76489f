package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/spf13/cobra"
)

// remindNow is the clock used by the remind command. Overridden in tests.
var remindNow = time.Now

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "List tasks whose reminder is due",
	Long: `Lists every task whose reminder time has passed, oldest first.

Pulse does not schedule notifications; run this from cron or a login script
to see what needs attention.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting remind command")
		return viewBoard(func(b *tracker.Board) error {
			now := remindNow()
			due := b.DueReminders(now)
			Logger.Debugf("Found %d due reminder(s)", len(due))
			if len(due) == 0 {
				fmt.Println(ui.Done() + " No reminders due")
				return nil
			}

			for _, r := range due {
				fmt.Printf("%s  %s / %s  %s\n",
					ui.Reminder(r.At, now),
					ui.Highlight.Sprint(r.Project), r.Task.Title,
					ui.Progress(r.Task.Completed(), len(r.Task.Items), progressWidth))
			}
			return nil
		})
	},
}
