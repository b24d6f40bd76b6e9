package profile

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrConfigCorrupt indicates the profile file could not be parsed or
	// violates the collection invariants.
	ErrConfigCorrupt = errors.New("profile file is corrupt")

	// ErrPersist indicates the profile file could not be written.
	ErrPersist = errors.New("cannot write profile file")

	// ErrDuplicateName indicates a profile with the same name exists.
	ErrDuplicateName = errors.New("profile name already exists")

	// ErrDuplicateAlias indicates another profile routes through the same
	// SSH host alias.
	ErrDuplicateAlias = errors.New("SSH host alias already used by another profile")

	// ErrNotFound indicates no profile has the requested name.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidProfile indicates a profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// CorruptError reports an unreadable profile file. The file is left as is.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("profile file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() []error {
	return []error{ErrConfigCorrupt, e.Err}
}

// PersistError reports a failed write of the profile file.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("write profile file %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}
