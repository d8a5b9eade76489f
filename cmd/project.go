package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/configs"
	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	projectColor    string
	projectListJSON bool
)

func init() {
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "task color (default: settings, then a random pastel)")
	projectListCmd.Flags().BoolVar(&projectListJSON, "json", false, "output as JSON")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectColorCmd)
	projectCmd.AddCommand(projectRemoveCmd)
}

// resetProjectCommandState resets the project commands' global state for testing.
func resetProjectCommandState() {
	projectColor = ""
	projectListJSON = false
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Adds, lists, renames, recolors and removes projects.

Projects are referred to by ID or by title (case-insensitive).

Examples:
  pulse project add "Website" --color "#a0c4ff"
  pulse project list
  pulse project rename Website "Marketing site"
  pulse project remove "Marketing site"`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project add command")
		color := projectColor
		if color == "" {
			if settings, err := configs.LoadSettings(); err == nil {
				color = settings.Defaults.TaskColor
			}
		}

		change := workflows.BoardChange{Operation: "project.add", Project: args[0]}
		return updateBoard("Adding project...", change, func(b *tracker.Board) (string, error) {
			p, err := b.AddProject(args[0], color)
			if err != nil {
				return "", err
			}
			return ui.Done() + " Added project " + ui.Highlight.Sprint(p.Title) + " " + ui.ID(p.ID), nil
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and their progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project list command")
		return viewBoard(func(b *tracker.Board) error {
			if projectListJSON {
				data, err := json.MarshalIndent(b.Projects, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal projects to JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(b.Projects) == 0 {
				fmt.Println("No projects yet. Run " + ui.Code.Sprint("pulse project add <title>") + " to create one.")
				return nil
			}
			for _, p := range b.Projects {
				done, total := projectProgress(p)
				fmt.Printf("%s  %s  %d task(s)  %s  %s\n",
					ui.Highlight.Sprint(p.Title), ui.Progress(done, total, progressWidth),
					len(p.Tasks), ui.Swatch(p.TaskColor), ui.ID(p.ID))
			}
			return nil
		})
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <project> <title>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project rename command")
		change := workflows.BoardChange{Operation: "project.rename", Project: args[0]}
		return updateBoard("Renaming project...", change, func(b *tracker.Board) (string, error) {
			if err := b.RenameProject(args[0], args[1]); err != nil {
				return "", err
			}
			return ui.Done() + " Renamed " + ui.Highlight.Sprint(args[0]) + " to " + ui.Highlight.Sprint(args[1]), nil
		})
	},
}

var projectColorCmd = &cobra.Command{
	Use:   "color <project> [color]",
	Short: "Change a project's task color",
	Long: `Changes the default color of a project's tasks. Without a color a random
pastel is picked.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project color command")
		color := ""
		if len(args) == 2 {
			color = args[1]
		}

		change := workflows.BoardChange{Operation: "project.color", Project: args[0]}
		return updateBoard("Updating project color...", change, func(b *tracker.Board) (string, error) {
			if err := b.SetProjectColor(args[0], color); err != nil {
				return "", err
			}
			p, _ := b.FindProject(args[0])
			return ui.Done() + " Task color of " + ui.Highlight.Sprint(p.Title) + " is now " + ui.Swatch(p.TaskColor), nil
		})
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <project>",
	Short: "Remove a project and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting project remove command")
		change := workflows.BoardChange{Operation: "project.remove", Project: args[0]}
		return updateBoard("Removing project...", change, func(b *tracker.Board) (string, error) {
			removed, err := b.RemoveProject(args[0])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Removed project " + ui.Highlight.Sprint(removed.Title) +
				fmt.Sprintf(" and %d task(s)", len(removed.Tasks)), nil
		})
	},
}
