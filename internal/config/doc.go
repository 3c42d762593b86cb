// Package config provides configuration structures and utilities for pagegate.
// It defines the admission thresholds, the URL scope and trap rules, and
// report and storage preferences, merged from defaults, the .pagegate YAML
// file and CLI flags.
package config
