package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/pulse/internal/configs"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var dataPathCmd = &cobra.Command{
	Use:   "data-path",
	Short: "Show or change the data directory",
	Long: `Shows the data directory in use, or changes it.

The directory is resolved from --data-path, then $PULSE_DATA_PATH, then the
app configuration written by 'pulse init'.

Examples:
  pulse data-path show
  pulse data-path set ~/Dropbox/pulse`,
}

var dataPathShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the data directory in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting data-path show command")
		env, err := openEnv()
		if err != nil {
			msg, unexpected := formatError(err)
			fmt.Println(msg)
			if unexpected {
				return err
			}
			return nil
		}
		defer env.Close()

		fmt.Println(env.DataPath)
		return nil
	},
}

var dataPathSetCmd = &cobra.Command{
	Use:   "set <dir>",
	Short: "Switch to another existing data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting data-path set command")
		spinner, cleanup := startSpinner("Switching data directory...", verbose)
		defer cleanup()

		result, err := workflows.Init(context.Background(), workflows.InitOptions{Path: args[0]})
		if err != nil {
			return failWith(spinner, err)
		}

		finalMessage := ui.Done() + " Data directory set to " + ui.Path.Sprint(result.DataPath)
		if override := os.Getenv(configs.DataPathEnv); override != "" {
			finalMessage += "\n" + ui.Caution() + " " + ui.Code.Sprint("$"+configs.DataPathEnv) +
				" is set to " + ui.Path.Sprint(override) + " and takes precedence"
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}

func init() {
	dataPathCmd.AddCommand(dataPathShowCmd)
	dataPathCmd.AddCommand(dataPathSetCmd)
}
