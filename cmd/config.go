package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/configs"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configShowJSON bool

// ConfigCmd is the settings command group.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Pulse settings",
	Long: `Shows and changes settings.toml in the user configuration directory.

Settings:
  storage.backend     file or sqlite
  key.path            key file location in keyfile mode
  defaults.task_color task color for new projects (empty picks a pastel)

The key mode cannot be set here because existing records would become
unreadable. Use 'pulse rekey' instead.

Examples:
  pulse config show
  pulse config set storage.backend sqlite
  pulse config set defaults.task_color "#a0c4ff"`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")
		settings, err := configs.LoadSettings()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load settings: %v", err)
		}

		if configShowJSON {
			output, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to marshal settings to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		taskColor := settings.Defaults.TaskColor
		if taskColor == "" {
			taskColor = "random pastel"
		}
		fmt.Println(color.CyanString("Settings") + " (" + ui.Path.Sprint(configs.UserPulseSettings.SettingsPath) + "):")
		fmt.Println()
		fmt.Printf("  %-20s %s\n", "storage.backend:", color.GreenString(settings.Storage.Backend))
		fmt.Printf("  %-20s %s\n", "key.mode:", color.GreenString(settings.Key.Mode))
		if settings.Key.Mode == configs.KeyModeKeyFile {
			fmt.Printf("  %-20s %s\n", "key.path:", color.YellowString(settings.KeyPath()))
		}
		fmt.Printf("  %-20s %s\n", "defaults.task_color:", color.GreenString(taskColor))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config set command")
		key, value := args[0], args[1]

		settings, err := configs.LoadSettings()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load settings: %v", err)
		}

		switch key {
		case "storage.backend":
			settings.Storage.Backend = value
		case "key.path":
			settings.Key.Path = value
		case "defaults.task_color":
			settings.Defaults.TaskColor = value
		case "key.mode":
			fmt.Println(ui.Failed() + " The key mode cannot be changed directly\n" +
				ui.Next() + " Run " + ui.Code.Sprint("pulse rekey --to "+value) + " to re-encrypt your records")
			return nil
		default:
			fmt.Println(ui.Failed() + " Unknown setting " + ui.Highlight.Sprint(key))
			return nil
		}

		if err := configs.SaveSettings(settings); err != nil {
			msg, unexpected := formatError(err)
			fmt.Println(msg)
			if unexpected {
				return err
			}
			return nil
		}
		Logger.Infof("Saved %s = %s", key, value)

		fmt.Println(ui.Done() + " Set " + ui.Highlight.Sprint(key) + " to " + ui.Code.Sprint(value))
		if key == "storage.backend" {
			fmt.Println(ui.Next() + " Existing records are not moved. Use " +
				ui.Code.Sprint("pulse export") + " before and " + ui.Code.Sprint("pulse import") + " after switching")
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}
