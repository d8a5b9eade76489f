package cipher

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// legacyPassphrase is compiled into every build. All installations share
// the key derived from it, so it protects against casual inspection of the
// data directory only. Changing it makes every existing file unreadable.
const legacyPassphrase = "mySuperSecretPasswordPlaceholder"

// Key is a 256-bit symmetric key.
type Key [KeySize]byte

// DeriveKey derives a key the way the desktop application always has:
// the SHA-256 digest of the passphrase is base64-encoded and the first 32
// characters of that text are used as the raw key bytes.
func DeriveKey(passphrase string) Key {
	digest := sha256.Sum256([]byte(passphrase))
	encoded := base64.StdEncoding.EncodeToString(digest[:])

	var key Key
	copy(key[:], encoded[:KeySize])
	return key
}

var defaultKey = sync.OnceValue(func() Key {
	return DeriveKey(legacyPassphrase)
})

// DefaultKey returns the process-wide key derived from the compiled-in
// passphrase. It is computed once and never changes during a run.
func DefaultKey() Key {
	return defaultKey()
}
