package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNotObject is returned when the arguments decode to something other
// than a JSON object.
var ErrNotObject = errors.New("astral: tool arguments are not a JSON object")

var emptyObject = json.RawMessage(`{}`)

// Arguments returns raw as a compact JSON object. Empty input yields {}.
// Input that is not valid JSON is repaired with jsonrepair before giving up.
func Arguments(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return emptyObject, nil
	}

	if !json.Valid([]byte(raw)) {
		repaired, err := jsonrepair.JSONRepair(raw)
		if err != nil {
			return nil, fmt.Errorf("repair tool arguments: %w", err)
		}
		raw = repaired
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, fmt.Errorf("compact tool arguments: %w", err)
	}
	if buf.Len() == 0 || buf.Bytes()[0] != '{' {
		return nil, ErrNotObject
	}
	return json.RawMessage(buf.Bytes()), nil
}

// ArgumentsMap is Arguments decoded into a map, the shape SDKs such as genai
// take for function call arguments.
func ArgumentsMap(raw string) (map[string]any, error) {
	normalized, err := Arguments(raw)
	if err != nil {
		return nil, err
	}
	var args map[string]any
	if err := json.Unmarshal(normalized, &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}
