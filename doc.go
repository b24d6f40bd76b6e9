// Package ghup switches git identities between several GitHub accounts.
//
// The package is organized into subpackages by domain:
//
//   - profile: the persisted account list (~/.config/ghup/accounts.yaml)
//   - auth/ssh: ed25519 key generation, import, permissions and agent checks
//   - auth: personal access token verification against the GitHub API
//   - sshconfig: structural editing of ~/.ssh/config
//   - switcher: applying a profile to a repository or globally
//   - probe: SSH and token connectivity tests
//   - git: git config and remote access behind a mockable runner
//   - config: layered settings (defaults, files, GHUP_* env, flags)
//   - errors: error classification and CLI messages
//   - cli: the cobra command tree
//   - testutil: test repositories, contexts and fixtures
//
// # Quick Start
//
//	svc, err := ghup.NewServices(ghup.Config{})
//	if err != nil {
//	    return err
//	}
//	p, err := svc.Profiles.Get("work")
//	if err != nil {
//	    return err
//	}
//	res, err := svc.Switcher.SwitchRepository(p, ".")
//
// Services can be carried through a context.Context with WithServices and
// read back with ServicesFrom.
package ghup
