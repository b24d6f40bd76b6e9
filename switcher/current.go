package switcher

import (
	"errors"
	"strings"

	"github.com/bangunx/ghup/git"
	"github.com/bangunx/ghup/profile"
)

// Current is the effective git identity and where it comes from.
type Current struct {
	git.Identity
	Scope    git.Scope
	RepoPath string // empty outside a repository
}

// Current reads the identity git would use in repoPath. Keys set in the
// repository-local config win over global ones; Scope is local when any
// local key is set. Outside a repository only the global identity is read.
func (e *Engine) Current(repoPath string) (*Current, error) {
	global, err := git.GlobalConfig(e.gitOptions()...).Identity()
	if err != nil {
		return nil, err
	}
	cur := &Current{Identity: global, Scope: git.ScopeGlobal}

	if repoPath == "" {
		return cur, nil
	}
	gctx, err := git.NewContext(repoPath, e.gitOptions()...)
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			return cur, nil
		}
		return nil, err
	}
	cur.RepoPath = gctx.RepoPath()

	local, err := gctx.Config().Identity()
	if err != nil {
		return nil, err
	}
	if local.IsZero() {
		return cur, nil
	}
	cur.Scope = git.ScopeLocal
	if local.Name != "" {
		cur.Name = local.Name
	}
	if local.Email != "" {
		cur.Email = local.Email
	}
	return cur, nil
}

// MatchCurrent returns the profile whose identity matches id. A profile
// matching both email and name wins over one matching email alone.
func MatchCurrent(c *profile.Collection, id git.Identity) (*profile.Profile, bool) {
	if id.Email == "" {
		return nil, false
	}
	var emailOnly *profile.Profile
	for i := range c.Accounts {
		p := &c.Accounts[i]
		if !strings.EqualFold(p.GitEmail, id.Email) {
			continue
		}
		if p.GitUserName == id.Name {
			return p, true
		}
		if emailOnly == nil {
			emailOnly = p
		}
	}
	return emailOnly, emailOnly != nil
}
