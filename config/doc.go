// Package config loads and validates agent configuration from YAML,
// with ${VAR} environment expansion and sensible defaults.
package config
