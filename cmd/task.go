package cmd

import (
	"fmt"
	"time"

	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	taskListItems   bool
	taskEditTitle   string
	taskEditColor   string
	taskRemindClear bool
)

func init() {
	taskListCmd.Flags().BoolVar(&taskListItems, "items", false, "show checklist items")
	taskEditCmd.Flags().StringVar(&taskEditTitle, "title", "", "new title")
	taskEditCmd.Flags().StringVar(&taskEditColor, "color", "", "task color (overrides the project color)")
	taskRemindCmd.Flags().BoolVar(&taskRemindClear, "clear", false, "remove the reminder")

	taskItemCmd.AddCommand(taskItemAddCmd)
	taskItemCmd.AddCommand(taskItemToggleCmd)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskUnassignCmd)
	taskCmd.AddCommand(taskRemindCmd)
	taskCmd.AddCommand(taskRemoveCmd)
	taskCmd.AddCommand(taskItemCmd)
}

// resetTaskCommandState resets the task commands' global state for testing.
func resetTaskCommandState() {
	taskListItems = false
	taskEditTitle = ""
	taskEditColor = ""
	taskRemindClear = false
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks and their checklists",
	Long: `Adds, edits and removes tasks, their checklist items, assignees and
reminders.

Projects and tasks are referred to by ID or by title (case-insensitive).
Checklist items are referred to by ID or by their position in the list.

Examples:
  pulse task add Website "Landing page"
  pulse task item add Website "Landing page" "Write copy"
  pulse task item toggle Website "Landing page" 1
  pulse task assign Website "Landing page" "Ada Lovelace"
  pulse task remind Website "Landing page" 2024-06-01T09:00
  pulse task list Website --items`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <project> <title>",
	Short: "Add a task to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task add command")
		change := workflows.BoardChange{Operation: "task.add", Project: args[0], Task: args[1]}
		return updateBoard("Adding task...", change, func(b *tracker.Board) (string, error) {
			t, err := b.AddTask(args[0], args[1])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Added task " + ui.Highlight.Sprint(t.Title) + " " + ui.ID(t.ID), nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List tasks, for one project or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task list command")
		return viewBoard(func(b *tracker.Board) error {
			projects := b.Projects
			if len(args) == 1 {
				p, err := b.FindProject(args[0])
				if err != nil {
					return err
				}
				projects = []tracker.Project{*p}
			}

			if len(projects) == 0 {
				fmt.Println("No projects yet. Run " + ui.Code.Sprint("pulse project add <title>") + " to create one.")
				return nil
			}
			for i, p := range projects {
				if i > 0 {
					fmt.Println()
				}
				done, total := projectProgress(p)
				fmt.Printf("%s  %s\n", ui.Highlight.Sprint(p.Title), ui.Progress(done, total, progressWidth))
				if len(p.Tasks) == 0 {
					fmt.Println("  " + ui.Muted.Sprint("no tasks"))
				}
				for _, t := range p.Tasks {
					printTask(b, t, taskListItems)
				}
			}
			return nil
		})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <project> <task>",
	Short: "Change a task's title or color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task edit command")
		var update tracker.TaskUpdate
		if cmd.Flags().Changed("title") {
			update.Title = &taskEditTitle
		}
		if cmd.Flags().Changed("color") {
			update.Color = &taskEditColor
		}
		if update.Title == nil && update.Color == nil {
			fmt.Println(ui.Caution() + " Nothing to change. Use " + ui.Flag.Sprint("--title") + " or " + ui.Flag.Sprint("--color"))
			return nil
		}

		change := workflows.BoardChange{Operation: "task.edit", Project: args[0], Task: args[1]}
		return updateBoard("Updating task...", change, func(b *tracker.Board) (string, error) {
			if err := b.UpdateTask(args[0], args[1], update); err != nil {
				return "", err
			}
			return ui.Done() + " Updated task", nil
		})
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <project> <task>",
	Short: "Mark every checklist item of a task complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task done command")
		change := workflows.BoardChange{Operation: "task.done", Project: args[0], Task: args[1]}
		return updateBoard("Completing task...", change, func(b *tracker.Board) (string, error) {
			if err := b.CompleteTask(args[0], args[1]); err != nil {
				return "", err
			}
			return ui.Done() + " Completed " + ui.Highlight.Sprint(args[1]), nil
		})
	},
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign <project> <task> <person>",
	Short: "Assign a person to a task",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task assign command")
		change := workflows.BoardChange{Operation: "task.assign", Project: args[0], Task: args[1], Person: args[2]}
		return updateBoard("Assigning person...", change, func(b *tracker.Board) (string, error) {
			if err := b.AssignPerson(args[0], args[1], args[2]); err != nil {
				return "", err
			}
			return ui.Done() + " Assigned " + ui.Highlight.Sprint(args[2]) + " to " + ui.Highlight.Sprint(args[1]), nil
		})
	},
}

var taskUnassignCmd = &cobra.Command{
	Use:   "unassign <project> <task> <person>",
	Short: "Remove a person from a task",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task unassign command")
		change := workflows.BoardChange{Operation: "task.unassign", Project: args[0], Task: args[1], Person: args[2]}
		return updateBoard("Unassigning person...", change, func(b *tracker.Board) (string, error) {
			if err := b.UnassignPerson(args[0], args[1], args[2]); err != nil {
				return "", err
			}
			return ui.Done() + " Unassigned " + ui.Highlight.Sprint(args[2]) + " from " + ui.Highlight.Sprint(args[1]), nil
		})
	},
}

var taskRemindCmd = &cobra.Command{
	Use:   "remind <project> <task> [when]",
	Short: "Set or clear a task's reminder",
	Long: `Sets a task's reminder. The time is RFC 3339, YYYY-MM-DDTHH:MM,
"YYYY-MM-DD HH:MM" or YYYY-MM-DD, in local time unless an offset is given.

Reminders are listed by 'pulse remind' once they are due.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task remind command")
		var when time.Time
		if !taskRemindClear {
			if len(args) != 3 {
				fmt.Println(ui.Failed() + " Give a reminder time, or " + ui.Flag.Sprint("--clear") + " to remove it")
				return nil
			}
			var err error
			when, err = tracker.ParseReminder(args[2])
			if err != nil {
				return printError(err)
			}
		}

		change := workflows.BoardChange{Operation: "task.remind", Project: args[0], Task: args[1]}
		return updateBoard("Updating reminder...", change, func(b *tracker.Board) (string, error) {
			if err := b.SetReminder(args[0], args[1], when); err != nil {
				return "", err
			}
			if when.IsZero() {
				return ui.Done() + " Cleared reminder", nil
			}
			return ui.Done() + " Reminder set for " + ui.Highlight.Sprint(when.Local().Format(ui.ReminderLayout)), nil
		})
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "remove <project> <task>",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task remove command")
		change := workflows.BoardChange{Operation: "task.remove", Project: args[0], Task: args[1]}
		return updateBoard("Removing task...", change, func(b *tracker.Board) (string, error) {
			removed, err := b.RemoveTask(args[0], args[1])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Removed task " + ui.Highlight.Sprint(removed.Title), nil
		})
	},
}

var taskItemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage a task's checklist",
}

var taskItemAddCmd = &cobra.Command{
	Use:   "add <project> <task> <text>",
	Short: "Add a checklist item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task item add command")
		change := workflows.BoardChange{Operation: "item.add", Project: args[0], Task: args[1]}
		return updateBoard("Adding item...", change, func(b *tracker.Board) (string, error) {
			item, err := b.AddItem(args[0], args[1], args[2])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Added " + ui.Highlight.Sprint(item.Text) + " " + ui.ID(item.ID), nil
		})
	},
}

var taskItemToggleCmd = &cobra.Command{
	Use:   "toggle <project> <task> <item>",
	Short: "Check or uncheck a checklist item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting task item toggle command")
		change := workflows.BoardChange{Operation: "item.toggle", Project: args[0], Task: args[1]}
		return updateBoard("Toggling item...", change, func(b *tracker.Board) (string, error) {
			p, err := b.FindProject(args[0])
			if err != nil {
				return "", err
			}
			t, err := p.FindTask(args[1])
			if err != nil {
				return "", err
			}
			completed, err := b.ToggleItem(p.ID, t.ID, resolveItem(t, args[2]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s %s  %s", ui.Done(), ui.Checkbox(completed),
				ui.Progress(t.Completed(), len(t.Items), progressWidth)), nil
		})
	},
}
