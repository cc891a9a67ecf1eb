package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxStringLength is the length TruncateString falls back to.
const DefaultMaxStringLength = 500

// JSONToString serialises object to JSON, pretty-printed with two-space
// indentation when indent is true. A marshalling failure yields a JSON
// error object instead of an error, so the result is always printable.
func JSONToString(object any, indent ...bool) string {
	var (
		encoded []byte
		err     error
	)
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen bytes and records how much
// was cut. A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// JoinTruncated joins items with ", " and truncates the result to maxLen.
func JoinTruncated(items []string, maxLen int) string {
	return TruncateString(strings.Join(items, ", "), maxLen)
}
