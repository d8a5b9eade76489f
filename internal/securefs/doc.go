// Package securefs persists JSON values as encrypted files.
//
// Each file holds exactly one value: the value is serialized with two-space
// indentation, encrypted into a single envelope, and written in full. There
// are no partial updates or appends.
//
// # Reading
//
// ReadJSON reports found=false without an error when the file does not
// exist or is empty. That is the only condition treated as "no data";
// decryption failures, malformed JSON and I/O errors are all returned, so
// the caller can tell a fresh install apart from a damaged one.
//
// # Writing
//
// WriteJSON creates missing parent directories, then writes to a temp file
// in the target directory and renames it over the destination. A failed
// write leaves the previous file untouched.
//
// # Concurrency
//
// Writes to the same path from one process are serialized; the last write
// wins. Nothing coordinates separate processes sharing a data directory.
// Operations cannot be cancelled.
package securefs
