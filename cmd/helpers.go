package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/PolarWolf314/pulse/internal/ui"
	"github.com/PolarWolf314/pulse/internal/utils"
	"github.com/PolarWolf314/pulse/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	err := s.Color("cyan")
	if err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		// Restore log output first.
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if !verbose && !debug {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// openEnv opens the data directory named by --data-path or the configuration.
func openEnv() (*workflows.Env, error) {
	Logger.Debugf("Opening data directory (flag: %q)", dataPathFlag)
	env, err := workflows.OpenEnv(context.Background(), workflows.EnvOptions{DataPath: dataPathFlag})
	if err != nil {
		return nil, err
	}
	Logger.Infof("Using data directory %s (%s backend, %s key)", env.DataPath, env.Settings.Storage.Backend, env.Settings.Key.Mode)
	return env, nil
}

// readBackupPassphrase reads the backup passphrase from the first line of
// stdin when fromStdin is set, or prompts for it without echo. confirm asks
// twice, for passphrases that protect new backups.
func readBackupPassphrase(cmd *cobra.Command, fromStdin, confirm bool) (string, error) {
	if fromStdin {
		Logger.Debugf("Reading passphrase from stdin")
		return utils.ReadLine(cmd.InOrStdin())
	}

	var (
		passphrase []byte
		err        error
	)
	if confirm {
		passphrase, err = utils.ReadNewPassphrase("Backup passphrase: ")
	} else {
		passphrase, err = utils.ReadPassphrase("Backup passphrase: ")
	}
	if err != nil {
		return "", err
	}
	return string(passphrase), nil
}

// formatError turns a workflow error into the final spinner message. The
// second result reports whether the error is unexpected and should make the
// command fail.
func formatError(err error) (string, bool) {
	switch {
	case errors.Is(err, perrors.ErrDataPathNotConfigured):
		return ui.Failed() + " No data directory has been configured\n" +
			ui.Next() + " Run " + ui.Code.Sprint("pulse init") + " first", false

	case errors.Is(err, perrors.ErrDataPathMissing):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Next() + " Run " + ui.Code.Sprint("pulse init --path DIR --create") + " to choose a new one", false

	case errors.Is(err, perrors.ErrKeyFileNotFound):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Next() + " Run " + ui.Code.Sprint("pulse init") + " to generate a key, or restore the key file from a backup", false

	case errors.Is(err, perrors.ErrAuthentication):
		return ui.Failed() + " Failed to decrypt: " + err.Error() + "\n" +
			ui.Next() + " Check the key mode in settings, or run " + ui.Code.Sprint("pulse doctor"), true

	case errors.Is(err, perrors.ErrWrongPassphrase),
		errors.Is(err, perrors.ErrEmptyPassphrase),
		errors.Is(err, perrors.ErrInvalidBundle),
		errors.Is(err, perrors.ErrNoRecords),
		errors.Is(err, perrors.ErrInvalidSettings),
		errors.Is(err, perrors.ErrProjectNotFound),
		errors.Is(err, perrors.ErrTaskNotFound),
		errors.Is(err, perrors.ErrItemNotFound),
		errors.Is(err, perrors.ErrPersonNotFound),
		errors.Is(err, perrors.ErrEmptyTitle),
		errors.Is(err, perrors.ErrInvalidReminder),
		errors.Is(err, perrors.ErrInvalidDateFormat):
		return ui.Failed() + " " + err.Error(), false

	case errors.Is(err, perrors.ErrFormat):
		return ui.Failed() + " Not a Pulse file: " + err.Error(), false

	case errors.Is(err, perrors.ErrAuditLogNotFound):
		return ui.Info.Sprint("ℹ") + " No audit log found. Operations will be logged after running any pulse command.", false

	default:
		return ui.Failed() + " " + err.Error(), true
	}
}

// failWith sets the spinner's final message for err and returns err only if
// it is unexpected.
func failWith(s *spinner.Spinner, err error) error {
	msg, unexpected := formatError(err)
	s.FinalMSG = msg
	if unexpected {
		return err
	}
	return nil
}
