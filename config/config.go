package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolverConfig configures the hierarchical config resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// With EnvPrefix "GHUP_", key "ssh_config" maps to GHUP_SSH_CONFIG.
	EnvPrefix string

	// GlobalConfigDir is the directory name under the user config home
	// ($XDG_CONFIG_HOME or ~/.config) holding the global config.
	GlobalConfigDir string

	// GlobalConfigFile is the filename for global config.
	// Defaults to "config.yaml" if empty.
	GlobalConfigFile string

	// LocalConfigName is the filename for local config in the git root.
	LocalConfigName string

	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// ValidGlobalKeys lists keys that can be set in global config.
	// If nil, all keys are valid.
	ValidGlobalKeys []string

	// ValidLocalKeys lists keys that can be set in local config.
	// If nil, all keys are valid.
	ValidLocalKeys []string

	// GitRootFinder finds the git root directory.
	// If nil, walks up from the working directory looking for .git.
	GitRootFinder func(startDir string) (string, error)

	// Logger receives warnings about unreadable config files.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver handles hierarchical configuration resolution.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	resolver := &Resolver{config: cfg}
	if cfg.Logger == nil {
		resolver.config.Logger = slog.Default()
	}

	finder := cfg.GitRootFinder
	if finder == nil {
		finder = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}
	if root, err := finder("."); err == nil && root != "" {
		resolver.gitRoot = root
		if cfg.LocalConfigName != "" {
			resolver.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home := configHome(); home != "" {
			resolver.globalPath = filepath.Join(home, cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}

	return resolver
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	resolver := &Resolver{
		config:     cfg,
		globalPath: globalPath,
		localPath:  localPath,
	}
	if localPath != "" {
		resolver.gitRoot = filepath.Dir(localPath)
	}
	if cfg.Logger == nil {
		resolver.config.Logger = slog.Default()
	}
	return resolver
}

func (r *Resolver) warn(msg, path string, err error) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s %s: %v", msg, path, err))
	r.config.Logger.Warn(msg, "path", path, "error", err)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	r.applyDefaults(cfg)
	r.applyFile(cfg, r.globalPath, r.config.ValidGlobalKeys, SourceGlobal)
	r.applyFile(cfg, r.localPath, r.config.ValidLocalKeys, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()

	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}

	return cfg
}

func (r *Resolver) applyDefaults(cfg *Resolved) {
	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
}

func (r *Resolver) applyFile(cfg *Resolved, path string, valid []string, src Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.warn("could not read config", path, err)
		}
		return
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn("could not parse config", path, err)
		return
	}

	for key, value := range parsed {
		if len(valid) > 0 && !slices.Contains(valid, key) {
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = src
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	if r.config.EnvPrefix != "" {
		allKeys := make(map[string]bool)
		for k := range r.config.Defaults {
			allKeys[k] = true
		}
		for k := range cfg.values {
			allKeys[k] = true
		}

		for key := range allKeys {
			if value := os.Getenv(EnvName(r.config.EnvPrefix, key)); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceEnv
			}
		}
	}

	// NO_COLOR is honoured regardless of prefix.
	if _, hasNoColor := os.LookupEnv("NO_COLOR"); hasNoColor {
		cfg.values["no_color"] = "true"
		cfg.sources["no_color"] = SourceEnv
	}
}

// EnvName returns the environment variable consulted for key.
func EnvName(prefix, key string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// configHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git entry.
// Worktrees and submodules carry a .git file rather than a directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
