package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/pulse/internal/audit"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit      int
	logReverse    bool
	logOperations []string
	logProject    string
	logTask       string
	logPerson     string
	logRecord     string
	logSince      string
	logUntil      string
	logOneline    bool
	logJSON       bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "show only the last n entries")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringSliceVar(&logOperations, "operation", nil, "filter by operation, or by group such as task (repeatable)")
	logCmd.Flags().StringVar(&logProject, "project", "", "filter by project name")
	logCmd.Flags().StringVar(&logTask, "task", "", "filter by task title")
	logCmd.Flags().StringVar(&logPerson, "person", "", "filter by person name")
	logCmd.Flags().StringVar(&logRecord, "record", "", "filter by record (people, projects)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries from this day on (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries up to this day (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "one line per entry")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperations = nil
	logProject = ""
	logTask = ""
	logPerson = ""
	logRecord = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of changes",
	Long: `Shows the audit log of the data directory: every board edit, export,
import and rekey, grouped by day.

Examples:
  pulse log                                   # Full history
  pulse log -n 10                             # Last 10 entries
  pulse log --project Website                 # Everything done to a project
  pulse log --project Website --task "Landing page"
  pulse log --operation task                  # Every task edit
  pulse log --operation export,import         # Backups only
  pulse log --record people                   # Changes to the people record
  pulse log --since 2024-05-01 --until 2024-05-31
  pulse log --json                            # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Reading history...", verbose)
	defer cleanup()

	opts := workflows.LogOptions{
		DataPath:   dataPathFlag,
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperations,
		Project:    logProject,
		Task:       logTask,
		Person:     logPerson,
		Record:     logRecord,
		Since:      logSince,
		Until:      logUntil,
	}

	result, err := workflows.Log(context.Background(), opts)
	if err != nil {
		return failWith(spinner, err)
	}

	Logger.Debugf("Kept %d of %d audit log entries", len(result.Entries), result.TotalEntriesBeforeFilter)

	spinner.FinalMSG = ""
	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("The audit log is empty.")
		} else {
			fmt.Println("No changes match these filters.")
		}
		return nil
	}

	switch {
	case logJSON:
		return outputLogJSON(result.Entries)
	case logOneline:
		outputLogOneline(result.Entries)
	default:
		outputLogByDay(result.Entries)
	}
	return nil
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding log entries: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s\n", entryTime(e, "2006-01-02 15:04"), e.Operation, workflows.FormatDetailsOneline(e))
	}
}

// outputLogByDay prints a heading per local day, then one line per entry.
func outputLogByDay(entries []audit.Entry) {
	day := ""
	for _, e := range entries {
		if d := entryTime(e, "Mon 2006-01-02"); d != day {
			if day != "" {
				fmt.Println()
			}
			day = d
			fmt.Println(ui.Info.Sprint(day))
		}

		who := e.User
		if e.Host != "" {
			who += "@" + e.Host
		}
		fmt.Printf("  %s  %-15s  %s  %s\n", entryTime(e, "15:04:05"), e.Operation, workflows.FormatDetails(e), ui.Muted.Sprint(who))
	}
}

// entryTime formats the entry timestamp in local time, or returns the raw
// timestamp if it cannot be read.
func entryTime(e audit.Entry, layout string) string {
	t, ok := e.Time()
	if !ok {
		return e.Timestamp
	}
	return t.Local().Format(layout)
}
