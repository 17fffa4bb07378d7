// Package config loads, normalizes, and validates diffusedbrush configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REDDIT_CLIENT_ID and STABILITY_KEY. The Config type centralizes every knob
// the CLI and the pipeline passes need, so store locations, the marker
// vocabulary, and external service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
