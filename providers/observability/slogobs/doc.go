// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans and metric updates become debug records, log calls map to slog
// levels (with an extra TRACE level below DEBUG), and counters keep their
// running value in memory so it can be read back with [Observer.CounterValue].
// Output is compact (one line), pretty (indented attributes) or JSON, chosen
// with [WithFormat] or the ASTRAL_LOG_FORMAT environment variable.
package slogobs
