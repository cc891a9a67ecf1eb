// Package clients caches provider clients so that requests sharing a
// provider and configuration share one connection pool.
//
// A client is cached under a key derived from the provider and its
// configuration, or under an explicit key supplied by the caller. Async
// clients are cached separately from sync clients of the same
// configuration.
package clients
