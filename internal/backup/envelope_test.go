package backup

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
)

// Produced by the desktop application's exporter with a fixed salt and IV.
const desktopBackup = "101112131415161718191a1b1c1d1e1f:202122232425262728292a2b2c2d2e2f:b0bd73514b11b9375e449bfc3c05dffe"

func fixedRandom() *bytes.Reader {
	salt, _ := hex.DecodeString("101112131415161718191a1b1c1d1e1f")
	iv, _ := hex.DecodeString("202122232425262728292a2b2c2d2e2f")
	return bytes.NewReader(append(salt, iv...))
}

func TestSeal_KnownAnswer(t *testing.T) {
	got, err := seal(`{"projects":[]}`, "correct horse", fixedRandom())
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if got != desktopBackup {
		t.Errorf("seal = %q, want %q", got, desktopBackup)
	}
}

func TestOpen_DesktopBackup(t *testing.T) {
	got, err := Open(desktopBackup+"\n", "correct horse")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got != `{"projects":[]}` {
		t.Errorf("Open = %q", got)
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	tests := []string{"x", "exactly sixteen!", strings.Repeat("ü", 100), `{"people":[{"id":"1","name":"Zoë"}]}`}
	for _, plaintext := range tests {
		sealed, err := Seal(plaintext, "pass")
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		got, err := Open(sealed, "pass")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if got != plaintext {
			t.Errorf("Round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestSeal_FreshSaltAndIV(t *testing.T) {
	a, _ := Seal("same", "pass")
	b, _ := Seal("same", "pass")
	if a == b {
		t.Error("Expected different envelopes for repeated Seal calls")
	}
}

func TestOpen_WrongPassphrase(t *testing.T) {
	for _, p := range []string{"wrong horse", "Correct horse"} {
		if _, err := Open(desktopBackup, p); !errors.Is(err, perrors.ErrWrongPassphrase) {
			t.Errorf("Open with %q: expected ErrWrongPassphrase, got %v", p, err)
		}
	}
}

func TestOpen_EmptyPassphrase(t *testing.T) {
	if _, err := Open(desktopBackup, ""); !errors.Is(err, perrors.ErrEmptyPassphrase) {
		t.Errorf("Expected ErrEmptyPassphrase, got %v", err)
	}
	if _, err := Seal("x", ""); !errors.Is(err, perrors.ErrEmptyPassphrase) {
		t.Errorf("Expected ErrEmptyPassphrase, got %v", err)
	}
}

func TestOpen_FormatErrors(t *testing.T) {
	salt := "101112131415161718191a1b1c1d1e1f"
	iv := "202122232425262728292a2b2c2d2e2f"
	tests := []struct {
		name     string
		envelope string
	}{
		{"empty", ""},
		{"two segments", salt + ":" + iv},
		{"four segments", desktopBackup + ":00"},
		{"bad salt hex", "zz" + salt[2:] + ":" + iv + ":b0bd73514b11b9375e449bfc3c05dffe"},
		{"short salt", salt[:30] + ":" + iv + ":b0bd73514b11b9375e449bfc3c05dffe"},
		{"short iv", salt + ":" + iv[:24] + ":b0bd73514b11b9375e449bfc3c05dffe"},
		{"empty ciphertext", salt + ":" + iv + ":"},
		{"partial block", salt + ":" + iv + ":b0bd7351"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.envelope, "correct horse"); !errors.Is(err, perrors.ErrFormat) {
				t.Errorf("Expected ErrFormat, got %v", err)
			}
		})
	}
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		ok   bool
	}{
		{"valid", []byte{'a', 3, 3, 3}, true},
		{"zero", []byte{'a', 0}, false},
		{"too large", append(bytes.Repeat([]byte{17}, 17), 17), false},
		{"mismatch", []byte{'a', 1, 2, 2, 2}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := unpad(tt.in); ok != tt.ok {
				t.Errorf("unpad(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}
