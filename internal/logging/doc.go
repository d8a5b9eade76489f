// Package logger provides leveled console logging for Pulse commands.
//
// Output is prefixed with a colored tag and gated by two flags:
//
//   - --verbose: shows info and warning messages
//   - --debug: shows everything, including debug and error details
//
// Without flags only WarnfAlways and WarnfUser produce output; failures
// reach the user through the command's final message instead.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Loaded %d projects", len(projects))
//
// Commands create a logger in their PersistentPreRun and pass it down.
package logger
