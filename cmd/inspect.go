package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var inspectRaw bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "print the decrypted text without parsing it")
}

func resetInspectCommandState() {
	inspectRaw = false
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Decrypt a record file and print it as JSON",
	Long: `Decrypts a single record file with the configured key and prints its
JSON. The file is not modified.

Examples:
  pulse inspect ~/.local/share/pulse/projects.json
  pulse inspect projects.json | jq '.[].title'
  pulse inspect --raw people.json             # Decrypted text, even if not valid JSON`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting inspect command")
		Logger.Debugf("Inspecting %s", args[0])

		result, err := workflows.Inspect(context.Background(), workflows.InspectOptions{Path: args[0], Raw: inspectRaw})
		if err != nil {
			return printError(err)
		}

		fmt.Println(result.JSON)
		return nil
	},
}
