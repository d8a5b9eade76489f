// Package cipher implements the at-rest encryption used for every Pulse
// record file.
//
// # Envelope Format
//
// Encrypt returns a single line of ASCII text:
//
//	<iv_hex>:<auth_tag_hex>:<ciphertext_hex>
//
// The IV is 12 random bytes drawn for every call, the tag is the 16-byte
// AES-256-GCM authentication tag, and all segments are lowercase hex.
// Encrypting the same text twice gives two different envelopes.
//
// # Keys
//
// DefaultKey derives the key from a passphrase compiled into the binary,
// which keeps files readable by every earlier release. Because every
// installation shares it, it only hides data from casual inspection.
// LoadOrCreateKeyFile provides a per-installation random key instead;
// files must be re-keyed when switching between the two.
//
// # Errors
//
// Decrypt distinguishes structural problems (errors.ErrFormat) from data
// that fails authentication (errors.ErrAuthentication). It never returns
// plaintext for an envelope whose tag does not verify.
package cipher
