package cmd

import (
	"context"
	"strings"

	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	exportOutputPath      string
	exportPassphraseStdin bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "output path for the backup (default: pulse-backup-YYYY-MM-DD.txt)")
	exportCmd.Flags().BoolVar(&exportPassphraseStdin, "passphrase-stdin", false, "read the passphrase from the first line of stdin")
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportOutputPath = ""
	exportPassphraseStdin = false
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every record to a passphrase-protected backup",
	Long: `Writes every project, task and person to a single backup file protected
by a passphrase. The desktop application can import the same file.

The backup does not depend on the encryption key of this installation, so
it can be restored on another machine or after a key change.

Use -o/--output to specify a custom output path.
Default filename includes today's date: pulse-backup-YYYY-MM-DD.txt

Examples:
  # Export to default filename
  pulse export

  # Export to custom path
  pulse export -o /backups/pulse.txt

  # Non-interactive
  echo "$PASSPHRASE" | pulse export --passphrase-stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")

		// Read the passphrase before the spinner starts drawing.
		passphrase, err := readBackupPassphrase(cmd, exportPassphraseStdin, true)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read passphrase: %v", err)
		}

		spinner, cleanup := startSpinner("Exporting records...", verbose)
		defer cleanup()

		env, err := openEnv()
		if err != nil {
			return failWith(spinner, err)
		}
		defer env.Close()

		result, err := workflows.Export(context.Background(), env, workflows.ExportOptions{
			OutputPath: exportOutputPath,
			Passphrase: passphrase,
		})
		if err != nil {
			return failWith(spinner, err)
		}
		Logger.Infof("Backup written to %s", result.OutputPath)

		spinner.FinalMSG = ui.Done() + " Exported " + strings.Join(result.Records, ", ") +
			" to " + ui.Path.Sprint(result.OutputPath) + "\n\n" +
			ui.Info.Sprint("Note:") + " The backup cannot be restored without its passphrase."
		return nil
	},
}
