// Package profile persists ghup account profiles.
//
// A profile bundles a git author identity, an optional SSH keypair routed
// through a Host alias, and an optional personal access token. Profiles are
// stored as an ordered list in a YAML file (JSON is accepted on read):
//
//	accounts:
//	  - name: work
//	    gitUserName: Work Me
//	    gitEmail: w@co.com
//	    host: github.com
//	    ssh:
//	      keyPath: /k/work
//	      hostAlias: github.com-work
//
// [Store] is the only writer of that file. Every mutation loads, edits and
// saves under an advisory lock, and fields this package does not know about
// are carried through rewrites untouched.
package profile
