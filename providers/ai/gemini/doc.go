// Package gemini adapts the Gemini API to the astral adapter registry,
// using the google.golang.org/genai SDK for both the client and the
// converted message types.
package gemini
