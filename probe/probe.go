package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"strconv"
	"time"

	"github.com/bangunx/ghup/auth"
	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/profile"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 10 * time.Second

// DefaultBinary is the ssh executable looked up on PATH.
const DefaultBinary = "ssh"

// Tester runs connectivity checks.
type Tester struct {
	runner       SSHRunner
	bin          string
	timeout      time.Duration
	verifierOpts []auth.VerifierOption
	logger       *slog.Logger
}

// Option configures a Tester.
type Option func(*Tester)

// WithSSHRunner sets the command runner.
func WithSSHRunner(r SSHRunner) Option {
	return func(t *Tester) {
		t.runner = r
	}
}

// WithSSHBinary overrides the ssh executable.
func WithSSHBinary(bin string) Option {
	return func(t *Tester) {
		if bin != "" {
			t.bin = bin
		}
	}
}

// WithTimeout sets the per-check ceiling. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(t *Tester) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithVerifierOptions passes options to the token verifier.
func WithVerifierOptions(opts ...auth.VerifierOption) Option {
	return func(t *Tester) {
		t.verifierOpts = append(t.verifierOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tester) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTester creates a Tester.
func NewTester(opts ...Option) *Tester {
	t := &Tester{
		runner:  ExecRunner{},
		bin:     DefaultBinary,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Timeout returns the per-check ceiling.
func (t *Tester) Timeout() time.Duration {
	return t.timeout
}

// Args returns the ssh arguments used to probe p.
func (t *Tester) Args(p profile.Profile) []string {
	secs := int(t.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	args := []string{
		"-T",
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", "ConnectTimeout=" + strconv.Itoa(secs),
	}
	if p.SSH != nil && p.SSH.KeyPath != "" {
		// HostName is forced so the probe works before the Host block exists.
		args = append(args,
			"-i", ssh.ExpandHome(p.SSH.KeyPath),
			"-o", "IdentitiesOnly=yes",
			"-o", "HostName="+p.HostName(),
		)
	}
	return append(args, target(p))
}

func target(p profile.Profile) string {
	if alias := p.Alias(); alias != "" {
		return "git@" + alias
	}
	return "git@" + p.HostName()
}

// Test authenticates to p's host over SSH with p's key. Rejection,
// unreachable hosts and timeouts are outcomes; an error is returned only
// when ssh cannot be started or ctx is canceled.
func (t *Tester) Test(ctx context.Context, p profile.Profile) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res := &Result{Profile: p.Name, Method: MethodSSH, Target: target(p)}
	args := t.Args(p)
	t.logger.Debug("probing ssh", "profile", p.Name, "args", args)

	start := time.Now()
	out, err := t.runner.Run(ctx, t.bin, args...)
	res.Duration = time.Since(start)
	res.Raw = out

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.Outcome = Timeout
		res.Duration = t.timeout
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("check %s: %w", p.Name, ctx.Err())
	}
	if err != nil && !ran(err) {
		return nil, &ExecutionError{Binary: t.bin, Err: err}
	}

	res.Outcome, res.Username = Classify(out)
	t.logger.Debug("ssh probe finished", "profile", p.Name, "outcome", string(res.Outcome), "duration", res.Duration)
	return res, nil
}

// ran reports whether err came from a process that started.
func ran(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// TestToken checks p's personal access token against the GitHub API of
// p's host.
func (t *Tester) TestToken(ctx context.Context, p profile.Profile) (*Result, error) {
	opts := append([]auth.VerifierOption{auth.WithHost(p.HostName())}, t.verifierOpts...)
	verifier, err := auth.NewGitHubVerifier(p.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res := &Result{Profile: p.Name, Method: MethodToken, Target: p.HostName()}
	start := time.Now()
	user, err := verifier.Verify(ctx)
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		res.Outcome = Authenticated
		res.Username = user.Login
	case errors.Is(err, auth.ErrTokenRejected):
		res.Outcome = AuthDenied
		res.Raw = err.Error()
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, fmt.Errorf("check %s: %w", p.Name, ctx.Err())
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Outcome = Timeout
		res.Duration = t.timeout
		res.Raw = err.Error()
	case isNetworkError(err):
		res.Outcome = HostUnreachable
		res.Raw = err.Error()
	default:
		res.Outcome = UnknownFailure
		res.Raw = err.Error()
	}
	t.logger.Debug("token probe finished", "profile", p.Name, "outcome", string(res.Outcome))
	return res, nil
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
