package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// Cipher encrypts text into envelopes with AES-256-GCM under a fixed key.
// It holds no mutable state and is safe for concurrent use.
type Cipher struct {
	aead gocipher.AEAD
	rand io.Reader
}

// New creates a Cipher for the given key.
func New(key Key) (*Cipher, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := gocipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: aead, rand: rand.Reader}, nil
}

// Default creates a Cipher for DefaultKey.
func Default() (*Cipher, error) {
	return New(DefaultKey())
}

// Encrypt seals plaintext under a fresh random IV and returns the envelope
// string. The only failure is the random source failing.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	split := len(sealed) - TagSize

	return Envelope{
		IV:         iv,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}.String(), nil
}

// Decrypt opens an envelope produced by Encrypt. Malformed input returns
// ErrFormat; a tag that does not verify returns ErrAuthentication. No
// plaintext is ever returned for data that failed verification.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	env, err := ParseEnvelope(envelope)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := c.aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: data may be corrupted or the key is incorrect", perrors.ErrAuthentication)
	}

	return string(plaintext), nil
}
