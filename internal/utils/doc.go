// Package utils holds small formatting helpers shared by the astral
// command-line tools.
package utils
