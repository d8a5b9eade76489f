package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput  bool
	doctorConcurrency int
	// doctorExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
	doctorCmd.Flags().IntVar(&doctorConcurrency, "concurrency", 0, "records verified in parallel (default: number of CPUs)")
}

func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorConcurrency = 0
	doctorExitFunc = os.Exit
}

// SetDoctorExitFunc sets the exit function for testing purposes.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on settings, keys and records",
	Long: `Runs a series of health checks and reports issues.

The doctor command checks:
  - settings.toml validity
  - The encryption key and key file permissions
  - The encrypted app configuration
  - Data directory existence and writability
  - That every record decrypts and parses
  - The audit log

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner("Running health checks...", verbose)

	result, err := workflows.Doctor(context.Background(), workflows.DoctorOptions{
		DataPath:    dataPathFlag,
		Concurrency: doctorConcurrency,
	})
	if err != nil {
		spinner.FinalMSG = ui.Failed() + " Failed to run health checks: " + err.Error()
		cleanup()
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	// The report is printed after the spinner has cleared its line.
	cleanup()
	if doctorJSONOutput {
		if err := outputDoctorJSON(result); err != nil {
			return err
		}
	} else {
		printDoctorResults(result)
		fmt.Println()
		switch {
		case result.Summary.Errors > 0:
			fmt.Println(ui.Failed() + " Health checks completed with errors")
		case result.Summary.Warnings > 0:
			fmt.Println(ui.Caution() + " Health checks completed with warnings")
		default:
			fmt.Println(ui.Done() + " Health checks completed")
		}
	}

	// Set exit code based on results.
	if result.Summary.Errors > 0 {
		doctorExitFunc(2)
	} else if result.Summary.Warnings > 0 {
		doctorExitFunc(1)
	}
	return nil
}

// outputDoctorJSON outputs the result as JSON.
func outputDoctorJSON(result *workflows.DoctorResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Done()
		case workflows.CheckWarning:
			statusIcon = ui.Caution()
		case workflows.CheckError:
			statusIcon = ui.Failed()
		}
		fmt.Printf("%s %-18s %s\n", statusIcon, check.Name, check.Message)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprint(fmt.Sprintf("%d warning(s)", result.Summary.Warnings)))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprint(fmt.Sprintf("%d error(s)", result.Summary.Errors)))
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Next(), suggestion)
		}
	}
}
