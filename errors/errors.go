package errors

import "errors"

// ErrCanceled indicates the user declined a confirmation.
var ErrCanceled = errors.New("canceled")

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("invalid usage")

// ErrNoProfiles indicates a command needs at least one stored profile.
var ErrNoProfiles = errors.New("no profiles configured")

// Exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitPartial = 3
)
