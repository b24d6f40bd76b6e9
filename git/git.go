package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// Context manages git operations for one working tree.
type Context struct {
	repoPath string        // Working tree root
	runner   CommandRunner // Command runner (defaults to ExecRunner)
	bin      string        // git executable
}

// Option configures Context and Config.
type Option func(*Context)

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// WithBinary overrides the git executable.
func WithBinary(bin string) Option {
	return func(g *Context) {
		if bin != "" {
			g.bin = bin
		}
	}
}

func newContext(opts []Option) *Context {
	g := &Context{
		runner: NewExecRunner(),
		bin:    DefaultBinary,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewContext resolves path to the root of its git working tree.
// It returns an error wrapping ErrNotGitRepo when path does not exist or is
// not inside a working tree. No configuration is touched.
func NewContext(path string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotGitRepo, absPath)
	}
	if !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	g := newContext(opts)
	root, err := g.runner.Run(absPath, g.bin, "rev-parse", "--show-toplevel")
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode < 0 {
		return nil, &Error{Op: "resolve repository", Cmd: g.bin + " rev-parse", Err: err}
	}
	if err != nil || strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotGitRepo, absPath)
	}
	g.repoPath = filepath.Clean(strings.TrimSpace(root))

	return g, nil
}

// RepoPath returns the working tree root.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// Config returns the repository-local configuration scope.
func (g *Context) Config() *Config {
	return &Config{ctx: g, scope: ScopeLocal, dir: g.repoPath}
}

// Remotes lists the configured remote names in git's order.
func (g *Context) Remotes() ([]string, error) {
	out, err := g.runGit("remote")
	if err != nil {
		return nil, &Error{Op: "list remotes", Output: out, Err: err}
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetRemoteURL returns the URL of the specified remote.
func (g *Context) GetRemoteURL(remote string) (string, error) {
	url, err := g.runGit("remote", "get-url", remote)
	if err != nil {
		if strings.Contains(err.Error(), "No such remote") {
			return "", fmt.Errorf("%w: %s", ErrRemoteNotFound, remote)
		}
		return "", &Error{Op: "get remote URL", Cmd: "remote get-url", Err: err}
	}
	return url, nil
}

// SetRemoteURL replaces the URL of the specified remote in one write.
func (g *Context) SetRemoteURL(remote, url string) error {
	if _, err := g.runGit("remote", "set-url", remote, url); err != nil {
		return &Error{Op: "set remote URL", Cmd: "remote set-url", Err: err}
	}
	return nil
}

func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, g.bin, args...)
}

// Scope selects which git configuration file is read or written.
type Scope string

// Configuration scopes.
const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// Config reads and writes one configuration scope.
type Config struct {
	ctx   *Context
	scope Scope
	dir   string
}

// GlobalConfig returns the user's global configuration scope.
func GlobalConfig(opts ...Option) *Config {
	g := newContext(opts)
	return &Config{ctx: g, scope: ScopeGlobal}
}

// Scope returns the scope this Config operates on.
func (c *Config) Scope() Scope {
	return c.scope
}

// Get returns the value for key. The bool is false when the key is unset.
func (c *Config) Get(key string) (string, bool, error) {
	out, err := c.run("--get", key)
	if err != nil {
		// git config --get exits 1 when the key is missing.
		if exitCode(err) == 1 {
			return "", false, nil
		}
		return "", false, &Error{Op: "get config " + key, Output: out, Err: err}
	}
	return out, true, nil
}

// Set writes key in this scope.
func (c *Config) Set(key, value string) error {
	if out, err := c.run(key, value); err != nil {
		return &Error{Op: "set config " + key, Output: out, Err: err}
	}
	return nil
}

// Unset removes key from this scope. Removing a missing key is not an error.
func (c *Config) Unset(key string) error {
	out, err := c.run("--unset", key)
	if err != nil {
		// git config --unset exits 5 when the key is missing.
		if exitCode(err) == 5 {
			return nil
		}
		return &Error{Op: "unset config " + key, Output: out, Err: err}
	}
	return nil
}

// Restore sets key back to a value captured with Get.
func (c *Config) Restore(key, value string, wasSet bool) error {
	if !wasSet {
		return c.Unset(key)
	}
	return c.Set(key, value)
}

// Identity is the git author identity of a scope.
type Identity struct {
	Name  string
	Email string
}

// IsZero reports whether neither field is set.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// Identity reads user.name and user.email from this scope.
func (c *Config) Identity() (Identity, error) {
	name, _, err := c.Get("user.name")
	if err != nil {
		return Identity{}, err
	}
	email, _, err := c.Get("user.email")
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}

func (c *Config) run(args ...string) (string, error) {
	full := append([]string{"config", "--" + string(c.scope)}, args...)
	return c.ctx.runner.Run(c.dir, c.ctx.bin, full...)
}
