// Package config resolves ghup settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. GHUP_* environment variables, plus NO_COLOR
//  3. .ghup.yaml in the repository root (only the "profile" pin)
//  4. $XDG_CONFIG_HOME/ghup/config.yaml, or ~/.config/ghup/config.yaml
//  5. Built-in defaults
//
// Typical use:
//
//	r := config.NewAppResolver("", logger)
//	resolved := r.ResolveWithFlags(map[string]string{config.KeySSHConfig: flagValue})
//	settings, err := config.Parse(resolved)
//
// Values are written back with SaveConfig, which only accepts known keys and
// writes through a temp file and rename. A config file that does not parse is
// reported and left untouched.
package config
