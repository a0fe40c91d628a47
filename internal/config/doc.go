// Package config loads textcore settings.
//
// Settings come from three sources, later ones overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file (Load), chosen by extension
//  3. Environment variables with a prefix (ApplyEnv), e.g. TEXTCORE_WORD_WRAP
//
// A missing file is not an error. Validate reports the first invalid
// setting as a *ValidationError.
package config
