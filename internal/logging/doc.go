// Package logging assembles the structured slog loggers used by the
// filmwallaa CLI and migration pipeline.
//
// It owns the console and JSON handlers, maps configured levels and output
// paths onto slog, and carries the migration run identifier through
// context.Context so every line written during a run can be correlated.
// NewNop supplies a discard logger for tests and optional wiring.
package logging
