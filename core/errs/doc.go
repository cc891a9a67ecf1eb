// Package errs holds the error values shared by the catalog, the adapter
// registry and the layers built on top of them.
//
// Lookup misses are reported as [*NotFoundError] and load-time problems as
// [*ValidationError]. Both match their sentinel through [errors.Is], so
// callers that do not care about the details can test against
// [ErrNotFound] or [ErrValidation] directly.
package errs
