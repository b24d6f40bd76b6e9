// Package switcher makes one profile effective for a repository or for the
// whole user account.
//
// A repository switch writes the local git identity and points SSH remotes
// at the profile's Host alias. A global switch writes the global git
// identity and installs the profile's Host block in the SSH client config,
// replacing any block for the same alias.
package switcher
