package ghup

import (
	"fmt"
	"log/slog"

	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/config"
	"github.com/bangunx/ghup/git"
	"github.com/bangunx/ghup/probe"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/switcher"
)

// Services holds every ghup component, built from one set of settings.
type Services struct {
	Settings config.Settings
	Resolved *config.Resolved
	Resolver *config.Resolver
	Saver    config.SaveConfig

	Profiles *profile.Store
	Keys     *ssh.Manager
	Switcher *switcher.Engine
	Tester   *probe.Tester

	Logger *slog.Logger
}

// Config configures NewServices.
type Config struct {
	ConfigFile string            // Global config file (default: ~/.config/ghup/config.yaml)
	Flags      map[string]string // Flag overrides keyed by config key

	Logger    *slog.Logger      // Default: slog.Default()
	GitRunner git.CommandRunner // Default: git.ExecRunner
	SSHRunner probe.SSHRunner   // Default: probe.ExecRunner
}

// NewServices resolves settings and builds the components from them.
func NewServices(cfg Config) (*Services, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := config.NewAppResolver(cfg.ConfigFile, logger)
	resolved := resolver.ResolveWithFlags(cfg.Flags)
	settings, err := config.Parse(resolved)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	logger.Debug("resolved settings",
		"config", resolver.GlobalPath(),
		"git_root", resolver.GitRoot(),
		"profiles_file", settings.ProfilesFile,
		"ssh_config", settings.SSHConfig,
	)

	return Build(settings, BuildOptions{
		Resolved:  resolved,
		Resolver:  resolver,
		Logger:    logger,
		GitRunner: cfg.GitRunner,
		SSHRunner: cfg.SSHRunner,
	}), nil
}

// BuildOptions carries the optional collaborators for Build.
type BuildOptions struct {
	Resolved  *config.Resolved
	Resolver  *config.Resolver
	Logger    *slog.Logger
	GitRunner git.CommandRunner
	SSHRunner probe.SSHRunner
}

// Build wires the components from already parsed settings. Empty path
// settings fall back to each component's default location.
func Build(settings config.Settings, opts BuildOptions) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	profilesFile := settings.ProfilesFile
	if profilesFile == "" {
		profilesFile = profile.DefaultPath()
	}

	keyOpts := []ssh.Option{ssh.WithLogger(logger)}
	if settings.SSHDir != "" {
		keyOpts = append(keyOpts, ssh.WithSSHDir(settings.SSHDir))
	}

	engineOpts := []switcher.Option{switcher.WithLogger(logger)}
	if settings.SSHConfig != "" {
		engineOpts = append(engineOpts, switcher.WithSSHConfigPath(settings.SSHConfig))
	}
	if settings.GitBinary != "" {
		engineOpts = append(engineOpts, switcher.WithGitBinary(settings.GitBinary))
	}
	if opts.GitRunner != nil {
		engineOpts = append(engineOpts, switcher.WithRunner(opts.GitRunner))
	}

	testerOpts := []probe.Option{probe.WithLogger(logger)}
	if settings.SSHBinary != "" {
		testerOpts = append(testerOpts, probe.WithSSHBinary(settings.SSHBinary))
	}
	if settings.ProbeTimeout > 0 {
		testerOpts = append(testerOpts, probe.WithTimeout(settings.ProbeTimeout))
	}
	if opts.SSHRunner != nil {
		testerOpts = append(testerOpts, probe.WithSSHRunner(opts.SSHRunner))
	}

	s := &Services{
		Settings: settings,
		Resolved: opts.Resolved,
		Resolver: opts.Resolver,
		Profiles: profile.NewStore(profilesFile, profile.WithLogger(logger)),
		Keys:     ssh.NewManager(keyOpts...),
		Switcher: switcher.NewEngine(engineOpts...),
		Tester:   probe.NewTester(testerOpts...),
		Logger:   logger,
	}
	if opts.Resolver != nil {
		s.Saver = config.NewAppSaver(opts.Resolver)
	}
	return s
}

// GitRoot returns the repository root detected while resolving settings,
// or "" outside a repository.
func (s *Services) GitRoot() string {
	if s.Resolver == nil {
		return ""
	}
	return s.Resolver.GitRoot()
}

// NewProfile returns a profile on the configured default host. With withKey
// set it carries the default key location under the SSH directory.
func (s *Services) NewProfile(name string, withKey bool) profile.Profile {
	p := profile.Profile{Name: name, Host: s.Settings.DefaultHost}
	if withKey {
		p.SSH = &profile.SSH{KeyPath: s.Keys.DefaultKeyPath(name)}
	}
	return p
}
