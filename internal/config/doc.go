// Package config holds all runtime configuration for personscan.
//
// Configuration comes from three layers, lowest precedence first:
// built-in defaults (NewConfig), an optional YAML file with provider
// API keys and toggles (LoadFile), and CLI flags bound by the cmd
// package. The resulting Config is passed through the application by
// dependency injection; there is no global configuration state.
package config
