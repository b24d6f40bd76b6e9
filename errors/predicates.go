package errors

import (
	"errors"
	"strings"

	"github.com/bangunx/ghup/auth"
	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/config"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/switcher"
)

// IsUserError reports whether err stems from input the user can correct,
// as opposed to an environment or I/O failure.
func IsUserError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		profile.ErrDuplicateName,
		profile.ErrDuplicateAlias,
		profile.ErrNotFound,
		profile.ErrInvalidProfile,
		ssh.ErrKeyExists,
		ssh.ErrInvalidKeyFormat,
		ssh.ErrKeyPathCollision,
		switcher.ErrNotAGitRepo,
		auth.ErrTokenRequired,
		config.ErrUnknownKey,
		ErrNoProfiles,
		ErrUsage,
		ErrCanceled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err names a missing profile.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, profile.ErrNotFound)
}

// IsPartial reports whether a global switch applied the identity but not
// the SSH routing.
func IsPartial(err error) bool {
	return err != nil && errors.Is(err, switcher.ErrPartialSwitch)
}

// IsConfigError reports whether the profile file could not be read or
// written.
func IsConfigError(err error) bool {
	return err != nil && (errors.Is(err, profile.ErrConfigCorrupt) || errors.Is(err, profile.ErrPersist))
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"dial tcp",
		"x509",
		"tls",
		"timeout",
		"deadline exceeded",
	} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsPartial(err):
		return ExitPartial
	case IsUserError(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}
