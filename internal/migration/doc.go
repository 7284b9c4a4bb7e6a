// Package migration runs the end-to-end export migration.
//
// A Migrator extracts review posts from an export, matches each post to a
// catalog movie with a bounded worker pool, and persists posts, mappings,
// and failed mappings as one batch. A Launcher starts runs in the
// background and guarantees a single run at a time, across processes, via
// a lock file in the data directory.
package migration
