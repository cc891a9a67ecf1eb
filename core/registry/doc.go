// Package registry loads the provider adapter registry: for every provider,
// the names of its sync and async client constructors and, per model type,
// the message converter that produces the provider's native messages.
//
// The names in the file are plain strings. [Registry.Bind] resolves every
// one of them against a [Bindings] table of Go values once, at start-up, and
// cross-checks the registry against the model catalog; a misspelled name or
// a provider whose catalog entries have no converter stops the program
// before the first request instead of failing on it.
package registry
