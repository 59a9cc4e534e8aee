// Package extract recovers structured JSON from free-form model output.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrEmpty = errors.New("model returned an empty response")

// ExtractionError reports model output that could not be turned into the
// expected shape. It is a system failure, never a negative verdict.
type ExtractionError struct {
	Raw   string
	Cause error
}

func (e *ExtractionError) Error() string {
	return "extract model response: " + e.Cause.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// Parse strips fences from raw and decodes the remainder into a generic
// JSON value (map[string]any, []any, string, float64, bool or nil).
func Parse(raw string) (any, error) {
	body := StripFences(raw)
	if strings.TrimSpace(body) == "" {
		return nil, &ExtractionError{Raw: raw, Cause: ErrEmpty}
	}
	var v any
	if err := sonic.UnmarshalString(body, &v); err != nil {
		return nil, &ExtractionError{Raw: raw, Cause: fmt.Errorf("invalid JSON: %w", err)}
	}
	return v, nil
}

// Decode parses raw, checks it against schema (when non-nil) and decodes it
// into out. Unknown keys are dropped.
func Decode(raw string, schema *jsonschema.Schema, out any) error {
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	if schema != nil {
		if err := schema.Validate(v); err != nil {
			return &ExtractionError{Raw: raw, Cause: fmt.Errorf("response does not match schema: %w", err)}
		}
	}
	if err := sonic.UnmarshalString(StripFences(raw), out); err != nil {
		return &ExtractionError{Raw: raw, Cause: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// MustCompile compiles a JSON Schema document held in a string.
func MustCompile(name, schema string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, schema)
}

// Truncate shortens s to at most n bytes for logging.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
