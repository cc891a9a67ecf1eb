// Package observability defines the tracing, metrics and logging interfaces
// the loaders, the client pool and the binder report through.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single
// injectable dependency. Components accept it as an optional option and stay
// silent when none is given. The active [Provider] and [Span] travel in a
// [context.Context] through [ContextWithObserver] and [ContextWithSpan].
//
// semconv.go lists the attribute keys, span names and metric names in use.
package observability
