package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/configs"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	rekeyTo     string
	rekeyNewKey bool
)

func init() {
	rekeyCmd.Flags().StringVar(&rekeyTo, "to", configs.KeyModeKeyFile, "key mode to switch to (legacy or keyfile)")
	rekeyCmd.Flags().BoolVar(&rekeyNewKey, "new-key", false, "generate a fresh key file even if one exists")
}

// resetRekeyCommandState resets the rekey command's global state for testing.
func resetRekeyCommandState() {
	rekeyTo = configs.KeyModeKeyFile
	rekeyNewKey = false
}

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Re-encrypt every record under a different key",
	Long: `Re-encrypts every record and the app configuration under another key, then
switches settings.toml to the new key mode.

Key modes:
  legacy   The key shared with the desktop application (default)
  keyfile  A random key generated for this installation

Nothing is written unless every record can be decrypted with the current key.
Back up the key file after switching to keyfile mode: records cannot be
decrypted without it.

Examples:
  # Move to a per-installation key
  pulse rekey --to keyfile

  # Replace a possibly leaked key file
  pulse rekey --to keyfile --new-key

  # Go back to the shared key
  pulse rekey --to legacy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rekey command")
		spinner, cleanup := startSpinner("Re-encrypting records...", verbose)
		defer cleanup()

		result, err := workflows.Rekey(context.Background(), workflows.RekeyOptions{
			DataPath: dataPathFlag,
			To:       rekeyTo,
			NewKey:   rekeyNewKey,
		})
		if err != nil {
			return failWith(spinner, err)
		}
		Logger.Infof("Rekeyed %d records from %s to %s", len(result.Records), result.From, result.To)

		finalMessage := ui.Done() + fmt.Sprintf(" Re-encrypted %d record(s)", len(result.Records)) +
			" (" + result.From + " → " + result.To + ")"
		if result.KeyCreated {
			finalMessage += "\n" + ui.Done() + " Generated a new key at " + ui.Path.Sprint(result.KeyPath) +
				"\n" + ui.Caution() + " Back up this key: records cannot be decrypted without it"
		}
		if result.To == configs.KeyModeLegacy {
			finalMessage += "\n" + ui.Next() + " Records are readable by the desktop application again"
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
