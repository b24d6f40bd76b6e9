// Package testutil provides helpers shared by ghup package tests: throwaway
// git repositories, an isolated global git config and home directory,
// fixture loading, and test-scoped contexts.
package testutil
