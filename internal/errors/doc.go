// Package errors provides typed error values for Pulse.
//
// Sentinel errors let callers handle specific conditions with errors.Is()
// rather than string matching.
//
// # Error Categories
//
//   - Storage errors: ErrFormat, ErrAuthentication, ErrIO, ErrSerialization
//   - Key errors: ErrInvalidKeyLength, ErrKeyFileNotFound, ErrWrongPassphrase
//   - Configuration errors: ErrDataPathNotConfigured, ErrInvalidSettings
//   - Tracker errors: ErrProjectNotFound, ErrTaskNotFound, ErrPersonNotFound
//   - Backup errors: ErrInvalidBundle, ErrNoRecords
//
// The four storage categories are what the encrypted store returns. A
// missing record file is not one of them: reads report it as "not found"
// without an error, and every other failure is returned. Callers must not
// treat a corrupted file as an empty one.
//
// # Usage
//
// Wrap a category together with the underlying cause so both stay
// inspectable:
//
//	return fmt.Errorf("%w: writing %s: %w", errors.ErrIO, path, err)
//
// Handle errors in the CLI layer:
//
//	_, err := store.ReadJSON(path, &projects)
//	if errors.Is(err, perrors.ErrAuthentication) {
//	    // "your data may be corrupted"
//	}
package errors
