// Package audit records what pulse did to a data directory.
//
// Every command that changes or exports data appends one JSON object per line
// to:
//
//	<data dir>/.pulse/audit.jsonl
//
// Each entry contains a UTC timestamp with microseconds, the OS user, the
// operation name and operation-specific details such as record names or the
// backup path.
//
// Audit logging is best-effort. If logging fails the operation continues
// without error. Malformed lines are skipped when reading so a partial write
// never hides the rest of the log.
package audit
