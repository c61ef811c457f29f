// Package config loads application settings from defaults, an optional YAML
// file and SCRY_-prefixed environment variables, and validates them before any
// component is constructed. The srs section names every scheduler threshold.
package config
