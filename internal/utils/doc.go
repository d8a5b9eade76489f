// Package utils provides shared utility functions for pulse.
//
// # Filesystem Utilities
//
//   - ExpandHome: expands a leading ~ in user-supplied paths
//   - CheckWritableDir: verifies a data directory accepts new files
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//   - UniquePath: finds a free file name by appending -2, -3, ...
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - IsValidRecordName: checks a record name is safe to use as a file name
//
// # I/O and Terminal Utilities
//
//   - ReadLine: reads one line of piped input
//   - ReadPassphrase, ReadNewPassphrase: hidden passphrase prompts
package utils
