// Package config loads, normalizes, and validates tvcut configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TVCUT_LANGUAGE and
// TVCUT_LOG_LEVEL environment overrides. Always obtain settings through this
// package so downstream code receives sanitized paths, canonical names, and
// clear validation errors.
package config
