package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	initPath   string
	initCreate bool
)

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "data directory (default: ~/.local/share/pulse)")
	initCmd.Flags().BoolVar(&initCreate, "create", false, "create the directory if it does not exist")
}

// resetInitCommandState resets the init command's global state for testing.
func resetInitCommandState() {
	initPath = ""
	initCreate = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Choose the data directory",
	Long: `Chooses the directory where Pulse keeps its encrypted records and saves
it in the encrypted app configuration shared with the desktop application.

Running init again with another path switches directories. Records already in
the directory are left untouched. In keyfile mode a per-installation key is
generated on first use.

Examples:
  # Use the default directory
  pulse init --create

  # Use a synced folder
  pulse init --path ~/Dropbox/pulse --create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")
		spinner, cleanup := startSpinner("Initializing data directory...", verbose)
		defer cleanup()

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			Path:   initPath,
			Create: initCreate,
		})
		if err != nil {
			return failWith(spinner, err)
		}
		Logger.Infof("Data directory set to %s", result.DataPath)

		finalMessage := ui.Done() + " Using data directory " + ui.Path.Sprint(result.DataPath)
		if result.DirCreated {
			finalMessage += " " + ui.Muted.Sprint("created")
		}
		if result.KeyCreated {
			finalMessage += "\n" + ui.Done() + " Generated a new key at " + ui.Path.Sprint(result.KeyPath) +
				"\n" + ui.Caution() + " Back up this key: records cannot be decrypted without it"
		}
		if n := len(result.ExistingRecords); n > 0 {
			finalMessage += "\n" + ui.Next() + fmt.Sprintf(" Found %d existing record(s)", n)
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
