package cipher

import (
	"encoding/hex"
	"fmt"
	"strings"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

const (
	// IVSize is the GCM nonce length written into every envelope.
	IVSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16

	separator = ":"
)

// Envelope is the decoded form of "<iv_hex>:<auth_tag_hex>:<ciphertext_hex>".
type Envelope struct {
	IV         []byte
	Tag        []byte
	Ciphertext []byte
}

// String encodes the envelope as lowercase hex segments joined by colons.
func (e Envelope) String() string {
	return hex.EncodeToString(e.IV) + separator +
		hex.EncodeToString(e.Tag) + separator +
		hex.EncodeToString(e.Ciphertext)
}

// ParseEnvelope decodes an envelope string. Every structural problem is
// reported as ErrFormat; the ciphertext itself is not checked here.
func ParseEnvelope(s string) (Envelope, error) {
	parts := strings.Split(s, separator)
	if len(parts) != 3 {
		return Envelope{}, fmt.Errorf("%w: expected IV:AuthTag:Data, got %d segments", perrors.ErrFormat, len(parts))
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: iv is not hex: %v", perrors.ErrFormat, err)
	}
	if len(iv) != IVSize {
		return Envelope{}, fmt.Errorf("%w: invalid IV length, expected %d bytes, got %d", perrors.ErrFormat, IVSize, len(iv))
	}

	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: auth tag is not hex: %v", perrors.ErrFormat, err)
	}
	if len(tag) != TagSize {
		return Envelope{}, fmt.Errorf("%w: invalid auth tag length, expected %d bytes, got %d", perrors.ErrFormat, TagSize, len(tag))
	}

	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: ciphertext is not hex: %v", perrors.ErrFormat, err)
	}

	return Envelope{IV: iv, Tag: tag, Ciphertext: ciphertext}, nil
}
