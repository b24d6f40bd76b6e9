package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Application identity used for file and variable names.
const (
	AppName         = "ghup"
	EnvPrefix       = "GHUP_"
	LocalConfigName = ".ghup.yaml"
)

// Setting keys.
const (
	KeyProfilesFile = "profiles_file"
	KeySSHConfig    = "ssh_config"
	KeySSHDir       = "ssh_dir"
	KeyDefaultHost  = "default_host"
	KeyProbeTimeout = "probe_timeout"
	KeyProfile      = "profile"
	KeyNoColor      = "no_color"
	KeyVerbose      = "verbose"
	KeySSHBinary    = "ssh_binary"
	KeyGitBinary    = "git_binary"
)

// GlobalKeys are the keys accepted in the user config file.
var GlobalKeys = []string{
	KeyProfilesFile,
	KeySSHConfig,
	KeySSHDir,
	KeyDefaultHost,
	KeyProbeTimeout,
	KeyNoColor,
	KeyVerbose,
	KeySSHBinary,
	KeyGitBinary,
}

// LocalKeys are the keys accepted in a repository's .ghup.yaml.
var LocalKeys = []string{KeyProfile}

// Defaults returns the built-in setting values. Empty path values are
// filled in by the components that own them.
func Defaults() map[string]string {
	return map[string]string{
		KeyProfilesFile: "",
		KeySSHConfig:    "",
		KeySSHDir:       "",
		KeyDefaultHost:  "github.com",
		KeyProbeTimeout: "10s",
		KeyProfile:      "",
		KeyNoColor:      "false",
		KeyVerbose:      "false",
		KeySSHBinary:    "ssh",
		KeyGitBinary:    "git",
	}
}

// NewAppResolver returns a Resolver configured for ghup. A non-empty
// globalPath replaces the default user config file.
func NewAppResolver(globalPath string, logger *slog.Logger) *Resolver {
	cfg := ResolverConfig{
		EnvPrefix:       EnvPrefix,
		GlobalConfigDir: AppName,
		LocalConfigName: LocalConfigName,
		Defaults:        Defaults(),
		ValidGlobalKeys: GlobalKeys,
		ValidLocalKeys:  LocalKeys,
		Logger:          logger,
	}
	r := NewResolver(cfg)
	if globalPath != "" {
		r.globalPath = globalPath
	}
	return r
}

// NewAppSaver returns the SaveConfig matching a Resolver from NewAppResolver.
func NewAppSaver(r *Resolver) SaveConfig {
	return SaveConfig{
		GlobalConfigDir: AppName,
		GlobalPath:      r.GlobalPath(),
		LocalConfigName: LocalConfigName,
		ValidGlobalKeys: GlobalKeys,
		ValidLocalKeys:  LocalKeys,
	}
}

// Settings is the typed view of a Resolved config.
type Settings struct {
	ProfilesFile string
	SSHConfig    string
	SSHDir       string
	DefaultHost  string
	ProbeTimeout time.Duration
	Profile      string
	NoColor      bool
	Verbose      bool
	SSHBinary    string
	GitBinary    string
}

// Parse converts resolved values into Settings. Invalid durations and
// booleans are reported with the key and its source.
func Parse(r *Resolved) (Settings, error) {
	s := Settings{
		ProfilesFile: expand(r.Get(KeyProfilesFile)),
		SSHConfig:    expand(r.Get(KeySSHConfig)),
		SSHDir:       expand(r.Get(KeySSHDir)),
		DefaultHost:  r.Get(KeyDefaultHost),
		Profile:      r.Get(KeyProfile),
		SSHBinary:    r.Get(KeySSHBinary),
		GitBinary:    r.Get(KeyGitBinary),
	}

	var err error
	if s.ProbeTimeout, err = parseDuration(r, KeyProbeTimeout); err != nil {
		return s, err
	}
	if s.NoColor, err = parseBool(r, KeyNoColor); err != nil {
		return s, err
	}
	if s.Verbose, err = parseBool(r, KeyVerbose); err != nil {
		return s, err
	}
	return s, nil
}

// ValidateValue reports whether value would parse for key. It lets
// writers reject a value before it reaches a config file.
func ValidateValue(key, value string) error {
	r := &Resolved{
		values:  map[string]string{key: value},
		sources: map[string]Source{key: SourceFlag},
	}
	var err error
	switch key {
	case KeyProbeTimeout:
		_, err = parseDuration(r, key)
	case KeyNoColor, KeyVerbose:
		_, err = parseBool(r, key)
	}
	return err
}

func parseDuration(r *Resolved, key string) (time.Duration, error) {
	v, src := r.GetWithSource(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Bare integers are read as seconds.
		if n, nerr := strconv.Atoi(v); nerr == nil && n > 0 {
			return time.Duration(n) * time.Second, nil
		}
		return 0, fmt.Errorf("%s (from %s): invalid duration %q", key, src, v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s (from %s): must be positive", key, src)
	}
	return d, nil
}

func parseBool(r *Resolved, key string) (bool, error) {
	v, src := r.GetWithSource(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s (from %s): invalid boolean %q", key, src, v)
	}
	return b, nil
}

// expand resolves a leading ~ against the home directory.
func expand(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
