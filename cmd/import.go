package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	importMergeFlag       bool
	importDryRunFlag      bool
	importPassphraseStdin bool
)

func init() {
	importCmd.Flags().BoolVar(&importMergeFlag, "merge", false, "keep records the backup does not contain")
	importCmd.Flags().BoolVar(&importDryRunFlag, "dry-run", false, "show what would be imported without making changes")
	importCmd.Flags().BoolVar(&importPassphraseStdin, "passphrase-stdin", false, "read the passphrase from the first line of stdin")
}

// resetImportCommandState resets the import command's global state for testing.
func resetImportCommandState() {
	importMergeFlag = false
	importDryRunFlag = false
	importPassphraseStdin = false
}

var importCmd = &cobra.Command{
	Use:   "import <backup>",
	Short: "Restore records from a backup",
	Long: `Restores records from a backup created by 'pulse export' or by the desktop
application.

Import modes:
  (default)  Replace: records not in the backup are removed
  --merge    Write the backup's records and keep every other record

The backup is decrypted and validated before anything is written.

Examples:
  pulse import pulse-backup-2024-01-15.txt
  pulse import pulse-backup-2024-01-15.txt --merge
  pulse import pulse-backup-2024-01-15.txt --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")

		passphrase, err := readBackupPassphrase(cmd, importPassphraseStdin, false)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read passphrase: %v", err)
		}

		mode := workflows.ImportModeReplace
		if importMergeFlag {
			mode = workflows.ImportModeMerge
		}
		Logger.Debugf("Import mode: %s, dry run: %t", mode, importDryRunFlag)

		spinner, cleanup := startSpinner("Importing backup...", verbose)
		defer cleanup()

		env, err := openEnv()
		if err != nil {
			return failWith(spinner, err)
		}
		defer env.Close()

		result, err := workflows.Import(context.Background(), env, workflows.ImportOptions{
			InputPath:  args[0],
			Passphrase: passphrase,
			Mode:       mode,
			DryRun:     importDryRunFlag,
		})
		if err != nil {
			return failWith(spinner, err)
		}

		spinner.FinalMSG = formatImportResult(result)
		return nil
	},
}

func formatImportResult(result *workflows.ImportResult) string {
	var b strings.Builder
	if result.DryRun {
		b.WriteString(ui.Warning.Sprint("Dry run:") + " no changes were made\n\n")
		b.WriteString(fmt.Sprintf("Would restore (%s): %s\n", result.Mode, strings.Join(result.Records, ", ")))
		if len(result.Removed) > 0 {
			b.WriteString("Would remove: " + strings.Join(result.Removed, ", "))
		}
		return b.String()
	}

	b.WriteString(ui.Done() + fmt.Sprintf(" Restored %s (%s)", strings.Join(result.Records, ", "), result.Mode))
	if len(result.Removed) > 0 {
		b.WriteString("\n" + ui.Next() + " Removed " + strings.Join(result.Removed, ", "))
	}
	return b.String()
}
