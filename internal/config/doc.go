// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, and TASKBOARD_-prefixed environment
// variables. Settings are grouped by the component that consumes them.
package config
