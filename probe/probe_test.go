package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bangunx/ghup/auth"
	"github.com/bangunx/ghup/profile"
)

// fakeRunner returns canned output and records the last invocation.
type fakeRunner struct {
	out   string
	err   error
	block bool
	name  string
	args  []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

// exitErr produces a real *exec.ExitError.
func exitErr(t *testing.T) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit 1").Run()
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		t.Skip("sh not available")
	}
	return err
}

func workProfile() profile.Profile {
	p := profile.Profile{Name: "work", GitEmail: "w@co.com", SSH: &profile.SSH{KeyPath: "/k/work"}}
	p.Normalize()
	return p
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		want     Outcome
		wantUser string
	}{
		{"greeting", "Hi octocat! You've successfully authenticated, but GitHub does not provide shell access.", Authenticated, "octocat"},
		{"greeting with warning", "Warning: Permanently added 'github.com' to the list of known hosts.\r\nHi mona-lisa! You've successfully authenticated, but GitHub does not provide shell access.", Authenticated, "mona-lisa"},
		{"denied", "git@github.com: Permission denied (publickey).", AuthDenied, ""},
		{"too many keys", "Received disconnect from 140.82.121.4: Too many authentication failures", AuthDenied, ""},
		{"dns", "ssh: Could not resolve hostname github.com-work: Name or service not known", HostUnreachable, ""},
		{"refused", "ssh: connect to host github.com port 22: Connection refused", HostUnreachable, ""},
		{"no route", "ssh: connect to host github.com port 22: No route to host", HostUnreachable, ""},
		{"timed out", "ssh: connect to host github.com port 22: Connection timed out", Timeout, ""},
		{"host key", "Host key verification failed.", UnknownFailure, ""},
		{"empty", "", UnknownFailure, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, user := Classify(tt.output)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestTester_Args(t *testing.T) {
	tester := NewTester(WithTimeout(5 * time.Second))

	args := tester.Args(workProfile())
	assert.Equal(t, []string{
		"-T",
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", "ConnectTimeout=5",
		"-i", "/k/work",
		"-o", "IdentitiesOnly=yes",
		"-o", "HostName=github.com",
		"git@github.com-work",
	}, args)

	plain := tester.Args(profile.Profile{Name: "plain"})
	assert.Equal(t, "git@github.com", plain[len(plain)-1])
	assert.NotContains(t, plain, "-i")
}

func TestTester_Test(t *testing.T) {
	t.Run("authenticated despite exit status", func(t *testing.T) {
		r := &fakeRunner{
			out: "Hi workbot! You've successfully authenticated, but GitHub does not provide shell access.",
			err: exitErr(t),
		}
		res, err := NewTester(WithSSHRunner(r)).Test(context.Background(), workProfile())
		require.NoError(t, err)
		assert.Equal(t, Authenticated, res.Outcome)
		assert.Equal(t, "workbot", res.Username)
		assert.True(t, res.OK())
		assert.Equal(t, "ssh", r.name)
		assert.Equal(t, "git@github.com-work", res.Target)
	})

	t.Run("unregistered key is denied, not an error", func(t *testing.T) {
		r := &fakeRunner{out: "git@github.com: Permission denied (publickey).", err: exitErr(t)}
		res, err := NewTester(WithSSHRunner(r)).Test(context.Background(), workProfile())
		require.NoError(t, err)
		assert.Equal(t, AuthDenied, res.Outcome)
		assert.False(t, res.OK())
	})

	t.Run("unknown output kept raw", func(t *testing.T) {
		r := &fakeRunner{out: "kex_exchange_identification: read: Connection reset by peer", err: exitErr(t)}
		res, err := NewTester(WithSSHRunner(r)).Test(context.Background(), workProfile())
		require.NoError(t, err)
		assert.Equal(t, UnknownFailure, res.Outcome)
		assert.Contains(t, res.Raw, "Connection reset")
	})

	t.Run("timeout", func(t *testing.T) {
		r := &fakeRunner{block: true}
		tester := NewTester(WithSSHRunner(r), WithTimeout(20*time.Millisecond))
		res, err := tester.Test(context.Background(), workProfile())
		require.NoError(t, err)
		assert.Equal(t, Timeout, res.Outcome)
		assert.Equal(t, 20*time.Millisecond, res.Duration)
	})

	t.Run("canceled by caller", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &fakeRunner{block: true}
		res, err := NewTester(WithSSHRunner(r), WithTimeout(time.Minute)).Test(ctx, workProfile())
		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrExecution)
		var execErr *ExecutionError
		assert.False(t, errors.As(err, &execErr))
	})

	t.Run("binary missing", func(t *testing.T) {
		tester := NewTester(WithSSHBinary("ghup-no-such-ssh-binary"))
		_, err := tester.Test(context.Background(), workProfile())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExecution)
		assert.ErrorIs(t, err, exec.ErrNotFound)
		var execErr *ExecutionError
		assert.ErrorAs(t, err, &execErr)
	})
}

func TestTester_TestToken(t *testing.T) {
	serve := func(t *testing.T, h http.HandlerFunc) *Tester {
		t.Helper()
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		return NewTester(WithVerifierOptions(auth.WithBaseURL(srv.URL)), WithTimeout(2*time.Second))
	}
	p := workProfile()
	p.Token = "ghp_test"

	t.Run("authenticated", func(t *testing.T) {
		tester := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"login":"workbot"}`))
		})
		res, err := tester.TestToken(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, Authenticated, res.Outcome)
		assert.Equal(t, "workbot", res.Username)
		assert.Equal(t, MethodToken, res.Method)
	})

	t.Run("rejected", func(t *testing.T) {
		tester := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
		})
		res, err := tester.TestToken(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, AuthDenied, res.Outcome)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)
		tester := NewTester(WithVerifierOptions(auth.WithBaseURL(srv.URL)), WithTimeout(50*time.Millisecond))

		res, err := tester.TestToken(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, Timeout, res.Outcome)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		tester := NewTester(WithVerifierOptions(auth.WithBaseURL(url)), WithTimeout(2*time.Second))

		res, err := tester.TestToken(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, HostUnreachable, res.Outcome)
	})

	t.Run("canceled by caller", func(t *testing.T) {
		tester := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"login":"workbot"}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := tester.TestToken(ctx, p)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := NewTester().TestToken(context.Background(), workProfile())
		assert.ErrorIs(t, err, auth.ErrTokenRequired)
	})
}
