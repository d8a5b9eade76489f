package cmd

import (
	"fmt"

	logger "github.com/PolarWolf314/pulse/internal/logging"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose      bool
	debug        bool
	dataPathFlag string
	Logger       logger.Logger

	// PulseCmd is the root command.
	PulseCmd = &cobra.Command{
		Use:   "pulse",
		Short: "Pulse - encrypted storage and a command line for your task board",
		Long: `Pulse manages the encrypted projects, tasks and people of the Pulse
task tracker from the command line.

Records are stored encrypted at rest in the data directory chosen with
'pulse init'. The desktop application reads the same files.

Examples:
  # Choose a data directory
  pulse init --path ~/Documents/pulse --create

  # Add a project and a task
  pulse project add "Website"
  pulse task add Website "Landing page"

  # Back everything up with a passphrase
  pulse export -o backup.txt`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing pulse with verbose=%t, debug=%t", verbose, debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// Display Pulse ASCII art using go-figure
			fmt.Println()
			myFigure := figure.NewColorFigure("Pulse", "small", "cyan", true)
			myFigure.Print()
			fmt.Println()
			fmt.Println("Run " + ui.Code.Sprint("pulse --help") + " to see available commands.")
		},
	}
)

func init() {
	PulseCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	PulseCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	PulseCmd.PersistentFlags().StringVar(&dataPathFlag, "data-path", "", "data directory to use instead of the configured one")

	PulseCmd.AddCommand(initCmd)
	PulseCmd.AddCommand(dataPathCmd)
	PulseCmd.AddCommand(ConfigCmd)
	PulseCmd.AddCommand(projectCmd)
	PulseCmd.AddCommand(taskCmd)
	PulseCmd.AddCommand(personCmd)
	PulseCmd.AddCommand(remindCmd)
	PulseCmd.AddCommand(exportCmd)
	PulseCmd.AddCommand(importCmd)
	PulseCmd.AddCommand(doctorCmd)
	PulseCmd.AddCommand(inspectCmd)
	PulseCmd.AddCommand(rekeyCmd)
	PulseCmd.AddCommand(logCmd)
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	dataPathFlag = ""
	resetInitCommandState()
	resetProjectCommandState()
	resetTaskCommandState()
	resetExportCommandState()
	resetImportCommandState()
	resetDoctorCommandState()
	resetInspectCommandState()
	resetRekeyCommandState()
	resetLogCommandState()
	resetConfigShowState()
	resetCobraFlagState(PulseCmd)
}

// resetCobraFlagState clears the Changed marker on every flag so values set
// by one test do not leak into the next.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
