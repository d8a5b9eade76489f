// Package workflows provides high-level orchestration for pulse commands.
//
// Workflows coordinate the configs, cipher, tracker, backup and audit
// packages to implement complete user-facing features. Each workflow handles
// a single command's business logic, independent of CLI concerns like flag
// parsing, spinners, passphrase prompts and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading settings, the key and the encrypted app config
//   - Opening the configured storage backend
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Init: chooses the data directory and saves the app config
//   - UpdateBoard: loads, edits and saves projects and people
//   - Export / Import: passphrase-protected backups
//   - Doctor: health checks, verifying every record in parallel
//   - Inspect: decrypts a single record file for reading
//   - Rekey: re-encrypts everything under a different key
//   - Log: reads and filters the audit log
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	env, err := workflows.OpenEnv(ctx, workflows.EnvOptions{})
//	if errors.Is(err, perrors.ErrDataPathNotConfigured) {
//	    // Suggest running pulse init
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows
