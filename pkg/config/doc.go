// Package config loads and validates the governance layer configuration.
//
// # Overview
//
// Configuration is a single YAML file covering quota limits, circuit
// breaker thresholds, cache sizing and tiers, persistence, and cache
// warming. Loading applies defaults, then optional environment variable
// overrides (KNOWALLEDGE_SECTION_FIELD), then validation:
//
//	cfg, err := config.Load("governance.yaml")
//
// A Watcher can observe the file for changes and deliver the re-loaded
// configuration with debouncing, which the governance context uses to
// apply new quota limits without a restart.
package config
