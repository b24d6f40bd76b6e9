package switcher

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/fsutil"
	"github.com/bangunx/ghup/git"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/sshconfig"
)

// DefaultSSHConfigPath returns ~/.ssh/config.
func DefaultSSHConfigPath() string {
	return ssh.ExpandHome("~/.ssh/config")
}

// Engine applies profiles to git and SSH configuration.
type Engine struct {
	sshConfigPath string
	runner        git.CommandRunner
	gitBin        string
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSSHConfigPath sets the SSH client config to manage.
func WithSSHConfigPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.sshConfigPath = ssh.ExpandHome(path)
		}
	}
}

// WithRunner sets the runner used for git commands.
func WithRunner(r git.CommandRunner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithGitBinary overrides the git executable.
func WithGitBinary(bin string) Option {
	return func(e *Engine) {
		e.gitBin = bin
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sshConfigPath: DefaultSSHConfigPath(),
		runner:        git.NewExecRunner(),
		gitBin:        git.DefaultBinary,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SSHConfigPath returns the managed SSH client config path.
func (e *Engine) SSHConfigPath() string {
	return e.sshConfigPath
}

func (e *Engine) gitOptions() []git.Option {
	return []git.Option{git.WithRunner(e.runner), git.WithBinary(e.gitBin)}
}

// RemoteChange records one rewritten remote.
type RemoteChange struct {
	Name   string
	OldURL string
	NewURL string
}

// RepositoryResult describes a completed repository switch.
type RepositoryResult struct {
	RepoPath string
	Previous git.Identity
	Applied  git.Identity
	Remotes  []RemoteChange
	Warnings []string
}

type repoOptions struct {
	knownAliases []string
}

// RepoOption configures a single SwitchRepository call.
type RepoOption func(*repoOptions)

// WithKnownAliases lists aliases of other profiles. Remotes routed through
// any of them are moved to the switched profile's alias.
func WithKnownAliases(aliases ...string) RepoOption {
	return func(o *repoOptions) {
		o.knownAliases = append(o.knownAliases, aliases...)
	}
}

// SwitchRepository makes p the identity of the repository containing
// repoPath. Nothing is written when repoPath is not inside a work tree.
//
// The identity is written to the repository-local config; if user.email
// cannot be written, user.name is restored. When p has an SSH key, remotes
// on p's host are rewritten to git@<alias>:<path>.
func (e *Engine) SwitchRepository(p profile.Profile, repoPath string, opts ...RepoOption) (*RepositoryResult, error) {
	var o repoOptions
	for _, opt := range opts {
		opt(&o)
	}

	gctx, err := git.NewContext(repoPath, e.gitOptions()...)
	if err != nil {
		return nil, &StepError{Step: StepResolve, Err: err}
	}

	res := &RepositoryResult{RepoPath: gctx.RepoPath()}
	prev, warnings, err := applyIdentity(gctx.Config(), p)
	res.Previous = prev
	res.Warnings = warnings
	if err != nil {
		return res, err
	}
	res.Applied = git.Identity{Name: p.GitUserName, Email: p.GitEmail}
	e.logger.Debug("applied repository identity", "repo", res.RepoPath, "profile", p.Name)

	if p.SSH == nil {
		return res, nil
	}

	remotes, err := gctx.Remotes()
	if err != nil {
		return res, &StepError{Step: StepListRemotes, Err: err}
	}
	for _, name := range remotes {
		oldURL, err := gctx.GetRemoteURL(name)
		if err != nil {
			return res, &StepError{Step: StepRewriteRemote, Remote: name, Err: err}
		}
		newURL, ok := rewriteRemoteURL(oldURL, p.HostName(), p.Alias(), o.knownAliases)
		if !ok || newURL == oldURL {
			continue
		}
		if err := gctx.SetRemoteURL(name, newURL); err != nil {
			return res, &StepError{Step: StepRewriteRemote, Remote: name, Err: err}
		}
		e.logger.Debug("rewrote remote", "remote", name, "from", oldURL, "to", newURL)
		res.Remotes = append(res.Remotes, RemoteChange{Name: name, OldURL: oldURL, NewURL: newURL})
	}
	return res, nil
}

// GlobalResult describes a global switch. IdentityApplied is true once the
// global git identity has been written, even if the SSH step failed.
type GlobalResult struct {
	Previous        git.Identity
	IdentityApplied bool
	SSHConfigPath   string
	SSHChanged      bool
	SSHSkipped      bool
	Warnings        []string
}

// SwitchGlobal makes p the user's global identity. When p has an SSH key,
// every Host block for its alias is replaced by one managed block. An SSH
// failure is returned as a *PartialSwitchError; the identity stays applied.
func (e *Engine) SwitchGlobal(p profile.Profile) (*GlobalResult, error) {
	res := &GlobalResult{SSHConfigPath: e.sshConfigPath}

	prev, warnings, err := applyIdentity(git.GlobalConfig(e.gitOptions()...), p)
	res.Previous = prev
	res.Warnings = warnings
	if err != nil {
		return res, err
	}
	res.IdentityApplied = true
	e.logger.Debug("applied global identity", "profile", p.Name)

	if p.SSH == nil {
		res.SSHSkipped = true
		return res, nil
	}

	entry := managedEntry(p)
	changed, err := e.editSSHConfig(func(f *sshconfig.File) (bool, error) {
		return true, f.Upsert(entry)
	})
	if err != nil {
		return res, &PartialSwitchError{Profile: p.Name, Err: err}
	}
	res.SSHChanged = changed
	return res, nil
}

// StripProfile removes the managed Host block for p's alias. Blocks not
// written by ghup for p are kept. It reports whether the file changed.
func (e *Engine) StripProfile(p profile.Profile) (bool, error) {
	alias := p.Alias()
	if alias == "" {
		return false, nil
	}
	return e.editSSHConfig(func(f *sshconfig.File) (bool, error) {
		return f.RemoveManaged(alias, p.Name), nil
	})
}

// ReroutedProfile reports what RerouteProfile did to the SSH config.
type ReroutedProfile struct {
	// Stripped is set when a managed block of the old profile was removed.
	Stripped bool
	// Routed is set when a block for the updated profile replaced it.
	Routed bool
}

// RerouteProfile moves the managed Host block of old to match updated
// after an edit. Nothing is written when old owned no block. When updated
// has no SSH key the block is only removed. The file is written once.
func (e *Engine) RerouteProfile(old, updated profile.Profile) (ReroutedProfile, error) {
	var res ReroutedProfile
	alias := old.Alias()
	if alias == "" {
		return res, nil
	}
	if updated.SSH != nil && alias == updated.Alias() && old.Name == updated.Name &&
		old.HostName() == updated.HostName() && old.SSH.KeyPath == updated.SSH.KeyPath {
		return res, nil
	}

	_, err := e.editSSHConfig(func(f *sshconfig.File) (bool, error) {
		if !f.RemoveManaged(alias, old.Name) {
			return false, nil
		}
		res.Stripped = true
		if updated.SSH == nil {
			return true, nil
		}
		res.Routed = true
		return true, f.Upsert(managedEntry(updated))
	})
	if err != nil {
		return ReroutedProfile{}, err
	}
	e.logger.Debug("rerouted ssh host", "from", alias, "to", updated.Alias(), "routed", res.Routed)
	return res, nil
}

func managedEntry(p profile.Profile) sshconfig.Entry {
	return sshconfig.Entry{
		Alias:        p.Alias(),
		HostName:     p.HostName(),
		IdentityFile: p.SSH.KeyPath,
		Profile:      p.Name,
	}
}

// editSSHConfig loads the SSH config under a lock, applies fn, and writes
// the result when the bytes differ.
func (e *Engine) editSSHConfig(fn func(*sshconfig.File) (bool, error)) (bool, error) {
	path := e.sshConfigPath
	wrap := func(err error) error {
		return &SSHConfigWriteError{Path: path, Err: err}
	}

	unlock, err := fsutil.Lock(filepath.Join(filepath.Dir(path), ".ghup.lock"))
	if err != nil {
		return false, wrap(err)
	}
	defer unlock()

	before, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, wrap(err)
	}
	f, err := sshconfig.Parse(before)
	if err != nil {
		return false, wrap(err)
	}

	edited, err := fn(f)
	if err != nil {
		return false, wrap(err)
	}
	after := f.Bytes()
	if !edited || bytes.Equal(before, after) {
		return false, nil
	}
	if err := f.WriteFile(path); err != nil {
		return false, wrap(err)
	}
	e.logger.Debug("wrote ssh config", "path", path)
	return true, nil
}

// applyIdentity writes user.name then user.email into cfg. Empty values
// unset the key. If user.email fails, user.name is restored.
func applyIdentity(cfg *git.Config, p profile.Profile) (git.Identity, []string, error) {
	prevName, nameSet, err := cfg.Get("user.name")
	if err != nil {
		return git.Identity{}, nil, &StepError{Step: StepReadIdentity, Err: err}
	}
	prevEmail, _, err := cfg.Get("user.email")
	if err != nil {
		return git.Identity{}, nil, &StepError{Step: StepReadIdentity, Err: err}
	}
	prev := git.Identity{Name: prevName, Email: prevEmail}

	var warnings []string
	if err := setOrUnset(cfg, "user.name", p.GitUserName, &warnings); err != nil {
		return prev, warnings, &StepError{Step: StepSetName, Err: err}
	}
	if err := setOrUnset(cfg, "user.email", p.GitEmail, &warnings); err != nil {
		if rbErr := cfg.Restore("user.name", prevName, nameSet); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("restore user.name: %w", rbErr))
		}
		return prev, warnings, &StepError{Step: StepSetEmail, Err: err}
	}
	return prev, warnings, nil
}

func setOrUnset(cfg *git.Config, key, value string, warnings *[]string) error {
	if strings.TrimSpace(value) == "" {
		*warnings = append(*warnings, fmt.Sprintf("%s is empty; %s %s left unset", key, cfg.Scope(), key))
		return cfg.Unset(key)
	}
	return cfg.Set(key, value)
}
