// Package git wraps the git executable for the operations ghup needs:
// resolving a working tree, reading and writing user identity at local or
// global scope, and reading and rewriting remote URLs.
//
// Core types:
//   - Context: a resolved working tree (local scope + remotes)
//   - Config: one configuration scope (local or global)
//   - CommandRunner: interface for executing commands (with mock for testing)
//
// Example usage:
//
//	repo, err := git.NewContext(".")
//	if errors.Is(err, git.ErrNotGitRepo) {
//	    // not inside a working tree
//	}
//	err = repo.Config().Set("user.email", "me@example.com")
//	url, err := repo.GetRemoteURL("origin")
package git
