// Package config loads, normalizes, and validates chunkscribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY, optionally sourced from a .env file. The Config type
// centralizes every knob the pipeline stages need so the CLI can resolve them
// once per invocation and layer flag overrides on top.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased enumerations, and clear validation errors.
package config
