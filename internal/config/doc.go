// Package config loads, normalizes, and validates filmwallaa configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEYS. The Config type centralizes every knob the migration
// pipeline and CLI need so catalog credentials, the classification keyword
// set, and the industry rule can be tuned per deployment in one place.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
