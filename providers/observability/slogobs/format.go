package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact writes one line per record with attributes as a JSON object.
	// Example: 2026-03-01 10:40:35 DEBUG catalog loaded {"astral.models.count":21}
	FormatCompact Format = "compact"

	// FormatPretty writes the record line followed by one indented line per attribute.
	FormatPretty Format = "pretty"

	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps s to a Format, falling back to FormatCompact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// GetFormatFromEnv reads ASTRAL_LOG_FORMAT, then LOG_FORMAT.
func GetFormatFromEnv() Format {
	if format := os.Getenv("ASTRAL_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return ParseFormat(os.Getenv("LOG_FORMAT"))
}

func (f Format) String() string {
	return string(f)
}
