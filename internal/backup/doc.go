// Package backup encrypts exported data with a user passphrase.
//
// The envelope is "<salt_hex>:<iv_hex>:<ciphertext_hex>": PBKDF2-HMAC-SHA256
// over the passphrase with 100 iterations gives an AES-256 key, and the
// JSON bundle is encrypted with AES-CBC and PKCS#7 padding. This matches the
// backups written by the desktop application and is unrelated to the
// envelope used for files at rest.
package backup
