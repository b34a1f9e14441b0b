// Package config loads, normalizes, and validates mkvlang configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, loads a .env file from the working directory, and honours the
// MKVLANG_* environment overrides. Always obtain settings through this package
// so downstream code receives canonical language codes, lower-cased extensions,
// and clear validation errors.
package config
