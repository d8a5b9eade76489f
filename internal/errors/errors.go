package errors

import "errors"

// Storage errors classify every failure of the encrypted persistence layer.
var (
	// ErrFormat indicates an envelope is not three colon-separated hex segments,
	// or one of its fixed-size segments has the wrong length.
	ErrFormat = errors.New("invalid encrypted data format")

	// ErrAuthentication indicates the authentication tag did not verify. The
	// data was tampered with, corrupted, or encrypted under a different key.
	ErrAuthentication = errors.New("failed to authenticate encrypted data")

	// ErrIO indicates a filesystem operation (mkdir, read, write, rename) failed.
	ErrIO = errors.New("storage i/o failure")

	// ErrSerialization indicates a value could not be encoded to, or decoded
	// from, JSON.
	ErrSerialization = errors.New("json serialization failure")
)

// Key errors indicate problems with the symmetric key or a backup passphrase.
var (
	// ErrInvalidKeyLength indicates the symmetric key has an unexpected length.
	ErrInvalidKeyLength = errors.New("invalid symmetric key length")

	// ErrKeyFileNotFound indicates the per-installation key file is missing.
	ErrKeyFileNotFound = errors.New("key file not found")

	// ErrWrongPassphrase indicates a backup could not be opened with the given passphrase.
	ErrWrongPassphrase = errors.New("incorrect passphrase or corrupted backup")

	// ErrEmptyPassphrase indicates an empty passphrase was supplied.
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")
)

// Configuration errors indicate the data directory or settings are unusable.
var (
	// ErrDataPathNotConfigured indicates no project data directory has been chosen yet.
	ErrDataPathNotConfigured = errors.New("project data path not configured")

	// ErrDataPathMissing indicates the configured data directory no longer exists.
	ErrDataPathMissing = errors.New("project data path does not exist")

	// ErrInvalidSettings indicates settings.toml is malformed or holds unknown values.
	ErrInvalidSettings = errors.New("settings are invalid")
)

// Tracker errors indicate a referenced record does not exist.
var (
	// ErrProjectNotFound indicates no project has the given ID or title.
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound indicates no task has the given ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrItemNotFound indicates no checklist item has the given ID.
	ErrItemNotFound = errors.New("checklist item not found")

	// ErrPersonNotFound indicates no person has the given ID or name.
	ErrPersonNotFound = errors.New("person not found")

	// ErrEmptyTitle indicates a title or name was blank.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrInvalidReminder indicates a reminder is not an RFC 3339 timestamp.
	ErrInvalidReminder = errors.New("invalid reminder time")
)

// Backup errors indicate an export or import could not be completed.
var (
	// ErrInvalidBundle indicates a decrypted backup does not match the bundle schema.
	ErrInvalidBundle = errors.New("invalid backup bundle")

	// ErrNoRecords indicates there was nothing to export.
	ErrNoRecords = errors.New("no records found")
)

// Audit log errors.
var (
	// ErrAuditLogNotFound indicates the data directory has no audit log yet.
	ErrAuditLogNotFound = errors.New("audit log not found")

	// ErrInvalidDateFormat indicates a --since or --until value is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
