package git

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/bangunx/ghup/testutil"
)

func TestNewContext(t *testing.T) {
	testutil.IsolateHome(t)

	t.Run("valid repo", func(t *testing.T) {
		dir := testutil.SetupTestRepo(t)

		g, err := NewContext(dir)
		if err != nil {
			t.Fatalf("NewContext: %v", err)
		}
		if g.RepoPath() != dir {
			t.Errorf("RepoPath() = %q, want %q", g.RepoPath(), dir)
		}
	})

	t.Run("subdirectory resolves to root", func(t *testing.T) {
		dir := testutil.SetupTestRepo(t)

		g, err := NewContext(filepath.Join(dir, "README.md"))
		if err != nil {
			t.Fatalf("NewContext: %v", err)
		}
		if g.RepoPath() != dir {
			t.Errorf("RepoPath() = %q, want %q", g.RepoPath(), dir)
		}
	})

	t.Run("not a repo", func(t *testing.T) {
		_, err := NewContext(t.TempDir())
		if !errors.Is(err, ErrNotGitRepo) {
			t.Errorf("err = %v, want ErrNotGitRepo", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := NewContext(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrNotGitRepo) {
			t.Errorf("err = %v, want ErrNotGitRepo", err)
		}
	})
}

func TestNewContext_GitUnavailable(t *testing.T) {
	t.Run("binary missing", func(t *testing.T) {
		_, err := NewContext(t.TempDir(), WithBinary("ghup-no-such-git"))
		if errors.Is(err, ErrNotGitRepo) {
			t.Fatalf("err = %v, want a start failure, not ErrNotGitRepo", err)
		}
		if !errors.Is(err, exec.ErrNotFound) {
			t.Errorf("err = %v, want exec.ErrNotFound", err)
		}
	})

	t.Run("runner start failure", func(t *testing.T) {
		m := NewMockRunner()
		startErr := errors.New("fork/exec: permission denied")
		m.OnCommand("git", "rev-parse", "--show-toplevel").Return("", &CommandError{Command: "git", ExitCode: -1, Err: startErr})

		_, err := NewContext(t.TempDir(), WithRunner(m))
		if errors.Is(err, ErrNotGitRepo) {
			t.Fatalf("err = %v, want a start failure, not ErrNotGitRepo", err)
		}
		if !errors.Is(err, startErr) {
			t.Errorf("err = %v, want %v", err, startErr)
		}
		var gitErr *Error
		if !errors.As(err, &gitErr) {
			t.Errorf("err = %T, want *Error", err)
		}
	})

	t.Run("exit status still means not a repo", func(t *testing.T) {
		m := NewMockRunner()
		m.OnCommand("git", "rev-parse", "--show-toplevel").Return("", &CommandError{Command: "git", ExitCode: 128})

		_, err := NewContext(t.TempDir(), WithRunner(m))
		if !errors.Is(err, ErrNotGitRepo) {
			t.Errorf("err = %v, want ErrNotGitRepo", err)
		}
	})
}

func TestNewContext_MockRunner(t *testing.T) {
	dir := t.TempDir()
	m := NewMockRunner()
	m.OnCommand("git", "rev-parse", "--show-toplevel").Return(dir, nil)

	g, err := NewContext(dir, WithRunner(m))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if g.RepoPath() != dir {
		t.Errorf("RepoPath() = %q", g.RepoPath())
	}

	m2 := NewMockRunner()
	m2.OnAnyCommand().Return("", &CommandError{Command: "git", ExitCode: 128})
	if _, err := NewContext(dir, WithRunner(m2)); !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("err = %v, want ErrNotGitRepo", err)
	}
}

func TestContext_Remotes(t *testing.T) {
	testutil.IsolateHome(t)
	dir := testutil.SetupTestRepo(t)
	testutil.AddRemote(t, dir, "origin", "git@github.com:owner/repo.git")
	testutil.AddRemote(t, dir, "upstream", "https://github.com/up/repo.git")

	g, err := NewContext(dir)
	if err != nil {
		t.Fatal(err)
	}

	remotes, err := g.Remotes()
	if err != nil {
		t.Fatalf("Remotes: %v", err)
	}
	if len(remotes) != 2 || remotes[0] != "origin" || remotes[1] != "upstream" {
		t.Errorf("Remotes() = %v", remotes)
	}

	url, err := g.GetRemoteURL("origin")
	if err != nil {
		t.Fatal(err)
	}
	if url != "git@github.com:owner/repo.git" {
		t.Errorf("GetRemoteURL() = %q", url)
	}

	if _, err := g.GetRemoteURL("missing"); !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("err = %v, want ErrRemoteNotFound", err)
	}

	if err := g.SetRemoteURL("origin", "git@github.com-work:owner/repo.git"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.RemoteURL(t, dir, "origin"); got != "git@github.com-work:owner/repo.git" {
		t.Errorf("remote after SetRemoteURL = %q", got)
	}
}

func TestConfig_LocalRoundTrip(t *testing.T) {
	testutil.IsolateHome(t)
	dir := testutil.SetupTestRepo(t)

	g, err := NewContext(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg := g.Config()

	if _, ok, err := cfg.Get("user.email"); err != nil || ok {
		t.Fatalf("Get unset = ok %v err %v", ok, err)
	}

	if err := cfg.Set("user.email", "work@example.com"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := cfg.Get("user.email")
	if err != nil || !ok || v != "work@example.com" {
		t.Errorf("Get = %q %v %v", v, ok, err)
	}

	if err := cfg.Unset("user.email"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Unset("user.email"); err != nil {
		t.Errorf("second Unset should be a no-op, got %v", err)
	}
	if got := testutil.ConfigValue(t, dir, "local", "user.email"); got != "" {
		t.Errorf("value after Unset = %q", got)
	}
}

func TestConfig_Restore(t *testing.T) {
	testutil.IsolateHome(t)
	dir := testutil.SetupTestRepo(t)
	g, err := NewContext(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg := g.Config()

	if err := cfg.Set("user.name", "Temp"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Restore("user.name", "", false); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cfg.Get("user.name"); ok {
		t.Error("Restore with wasSet=false should unset")
	}

	if err := cfg.Restore("user.name", "Original", true); err != nil {
		t.Fatal(err)
	}
	id, err := cfg.Identity()
	if err != nil {
		t.Fatal(err)
	}
	if id.Name != "Original" || id.Email != "" {
		t.Errorf("Identity() = %+v", id)
	}
}

func TestGlobalConfig(t *testing.T) {
	home := testutil.IsolateHome(t)
	testutil.RequireGit(t)

	cfg := GlobalConfig()
	if cfg.Scope() != ScopeGlobal {
		t.Errorf("Scope() = %q", cfg.Scope())
	}
	if err := cfg.Set("user.name", "Global User"); err != nil {
		t.Fatal(err)
	}
	id, err := cfg.Identity()
	if err != nil {
		t.Fatal(err)
	}
	if id.Name != "Global User" {
		t.Errorf("Identity().Name = %q", id.Name)
	}
	if got := testutil.ConfigValue(t, home, "global", "user.name"); got != "Global User" {
		t.Errorf("global user.name = %q", got)
	}
}

func TestConfig_GetError(t *testing.T) {
	m := NewMockRunner()
	m.OnAnyCommand().Return("", &CommandError{Command: "git", Output: "bad config", ExitCode: 3})

	_, _, err := GlobalConfig(WithRunner(m)).Get("user.name")
	var gitErr *Error
	if !errors.As(err, &gitErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if !m.WasCalled("git", "config", "--global", "--get", "user.name") {
		t.Error("expected git config --global --get call")
	}
}

func TestIdentity_IsZero(t *testing.T) {
	if !(Identity{}).IsZero() {
		t.Error("empty identity should be zero")
	}
	if (Identity{Email: "a@b"}).IsZero() {
		t.Error("identity with email should not be zero")
	}
}
