package cmd

import (
	"fmt"

	"github.com/PolarWolf314/pulse/internal/tracker"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

func init() {
	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personRemoveCmd)
}

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the people tasks can be assigned to",
	Long: `Adds, lists and removes people. Initials are derived from the name.
Removing a person unassigns them from every task.

Examples:
  pulse person add "Ada Lovelace"
  pulse person list
  pulse person remove "Ada Lovelace"`,
}

var personAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting person add command")
		change := workflows.BoardChange{Operation: "person.add", Person: args[0]}
		return updateBoard("Adding person...", change, func(b *tracker.Board) (string, error) {
			p, err := b.AddPerson(args[0])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Added " + ui.Highlight.Sprint(p.Name) + " (" + p.Initials + ")", nil
		})
	},
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people and how many tasks they are assigned",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting person list command")
		return viewBoard(func(b *tracker.Board) error {
			if len(b.People) == 0 {
				fmt.Println("No people yet. Run " + ui.Code.Sprint("pulse person add <name>") + " to add someone.")
				return nil
			}

			assigned := make(map[string]int)
			for _, p := range b.Projects {
				for _, t := range p.Tasks {
					for _, id := range t.AssignedPersons {
						assigned[id]++
					}
				}
			}
			for _, p := range b.People {
				fmt.Printf("%-3s %s  %d task(s)  %s\n", p.Initials, p.Name, assigned[p.ID], ui.ID(p.ID))
			}
			return nil
		})
	},
}

var personRemoveCmd = &cobra.Command{
	Use:   "remove <person>",
	Short: "Remove a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting person remove command")
		change := workflows.BoardChange{Operation: "person.remove", Person: args[0]}
		return updateBoard("Removing person...", change, func(b *tracker.Board) (string, error) {
			removed, err := b.RemovePerson(args[0])
			if err != nil {
				return "", err
			}
			return ui.Done() + " Removed " + ui.Highlight.Sprint(removed.Name), nil
		})
	},
}
