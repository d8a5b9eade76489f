package backup

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"golang.org/x/crypto/pbkdf2"
)

// Backup files produced by the desktop application use these parameters.
const (
	SaltSize   = 16
	IVSize     = aes.BlockSize
	KeySize    = 32
	Iterations = 100
)

// Seal encrypts plaintext under a key derived from passphrase and returns
// "<salt_hex>:<iv_hex>:<ciphertext_hex>".
func Seal(plaintext, passphrase string) (string, error) {
	return seal(plaintext, passphrase, rand.Reader)
}

func seal(plaintext, passphrase string, random io.Reader) (string, error) {
	if passphrase == "" {
		return "", perrors.ErrEmptyPassphrase
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(random, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pad([]byte(plaintext))
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Open reverses Seal. A malformed envelope yields ErrFormat; a wrong
// passphrase or damaged ciphertext yields ErrWrongPassphrase.
func Open(envelope, passphrase string) (string, error) {
	if passphrase == "" {
		return "", perrors.ErrEmptyPassphrase
	}

	parts := strings.Split(strings.TrimSpace(envelope), ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", perrors.ErrFormat, len(parts))
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) != SaltSize {
		return "", fmt.Errorf("%w: invalid salt", perrors.ErrFormat)
	}
	iv, err := hex.DecodeString(parts[1])
	if err != nil || len(iv) != IVSize {
		return "", fmt.Errorf("%w: invalid IV", perrors.ErrFormat)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext", perrors.ErrFormat)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, ok := unpad(plaintext)
	if !ok || len(plaintext) == 0 || !utf8.Valid(plaintext) {
		return "", perrors.ErrWrongPassphrase
	}
	return string(plaintext), nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, KeySize, sha256.New)
}

// pad applies PKCS#7 padding to a whole number of AES blocks.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
