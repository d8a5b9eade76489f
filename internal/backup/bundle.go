package backup

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BundleVersion is written into every exported bundle.
const BundleVersion = 1

const schemaURL = "https://pulse.local/schemas/bundle.json"

//go:embed bundle.schema.json
var bundleSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(bundleSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// Bundle is the decrypted content of a backup file.
type Bundle struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// NewBundle wraps records exported at t.
func NewBundle(data map[string]json.RawMessage, t time.Time) *Bundle {
	return &Bundle{Version: BundleVersion, ExportedAt: t.UTC(), Data: data}
}

// Names returns the record names in the bundle.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.Data))
	for name := range b.Data {
		names = append(names, name)
	}
	return names
}

// Marshal encodes the bundle as JSON.
func (b *Bundle) Marshal() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("%w: encoding bundle: %w", perrors.ErrSerialization, err)
	}
	return string(data), nil
}

// ValidateBundle checks a decoded JSON document against the bundle schema.
func ValidateBundle(doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling bundle schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", perrors.ErrInvalidBundle, describeValidationError(err))
	}
	return nil
}

// DecodeBundle parses and validates decrypted backup text. Older exports
// that hold the record map directly, without version or data fields, are
// accepted and wrapped.
func DecodeBundle(text string) (*Bundle, error) {
	var doc any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidBundle, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", perrors.ErrInvalidBundle)
	}

	if isLegacy(obj) {
		var data map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidBundle, err)
		}
		obj = map[string]any{
			"version":    json.Number("1"),
			"exportedAt": time.Time{}.Format(time.RFC3339),
			"data":       obj,
		}
		if err := ValidateBundle(obj); err != nil {
			return nil, err
		}
		return &Bundle{Version: BundleVersion, Data: data}, nil
	}

	if err := ValidateBundle(obj); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal([]byte(text), &b); err != nil {
		return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidBundle, err)
	}
	return &b, nil
}

func isLegacy(obj map[string]any) bool {
	_, hasVersion := obj["version"]
	_, hasData := obj["data"]
	return !hasVersion && !hasData
}

func describeValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var buf bytes.Buffer
	collectCauses(&buf, ve)
	return strings.TrimSuffix(buf.String(), "; ")
}

func collectCauses(buf *bytes.Buffer, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		fmt.Fprintf(buf, "%s: %s; ", loc, ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		collectCauses(buf, cause)
	}
}
