// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running the pulse command tree.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/pulse/internal/configs"
	logger "github.com/PolarWolf314/pulse/internal/logging"
)

// setupTestEnvironment points the user settings at a temporary directory and
// returns a data directory inside it that does not exist yet.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	originalUserSettings := configs.UserPulseSettings
	t.Cleanup(func() {
		configs.UserPulseSettings = originalUserSettings
		ResetGlobalState()
	})

	configs.UserPulseSettings = configs.NewUserSettings(
		filepath.Join(tempDir, "config"),
		filepath.Join(tempDir, "share"),
	)
	t.Setenv(configs.DataPathEnv, "")
	t.Setenv("NO_COLOR", "1")

	ResetGlobalState()
	SetDoctorExitFunc(func(int) {})
	return filepath.Join(tempDir, "data")
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// runPulse executes the command tree with args, feeding stdin to commands
// that read from it, and returns everything written to stdout and stderr.
func runPulse(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	exitFunc := doctorExitFunc
	ResetGlobalState()
	doctorExitFunc = exitFunc
	Logger = logger.Logger{}

	PulseCmd.SetArgs(args)
	PulseCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		PulseCmd.SetArgs(nil)
		PulseCmd.SetIn(nil)
	})

	return captureOutput(PulseCmd.Execute)
}

// mustRunPulse is runPulse for commands that are expected to succeed.
func mustRunPulse(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runPulse(t, "", args...)
	if err != nil {
		t.Fatalf("pulse %s failed: %v\nOutput: %s", strings.Join(args, " "), err, output)
	}
	return output
}
