// Package parse normalizes the JSON that models emit as tool-call
// arguments. Models occasionally return arguments with trailing commas,
// single quotes or unquoted keys; provider wire formats that carry the
// arguments as structured JSON reject those, so converters run them through
// [Arguments] or [ArgumentsMap] first.
package parse
