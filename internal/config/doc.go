// Package config handles loading and validation of the play-deploy
// configuration.
//
// Key responsibilities:
//   - Layer defaults, the project config file, environment and flags (viper)
//   - Accept YAML and JSON/JSONC config files (JSONC via tidwall/jsonc)
//   - Validate values before any file or network access
//   - Load per-language release notes from YAML
//   - Write the commented default config for "play-deploy init"
package config
