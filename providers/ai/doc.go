// Package ai defines the provider-agnostic message model and the two
// extension points every provider package implements: a [MessageConverter]
// that turns a conversation into the provider's native message type, and a
// [ClientFactory] that builds the provider's SDK client in sync or async
// mode.
//
// The adapter registry refers to converters and factories by name; the
// provider packages register their implementations under those names.
package ai
