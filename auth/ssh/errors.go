package ssh

import (
	"errors"
	"fmt"
)

// SSH key errors.
var (
	// ErrNoSSHAgent is returned when the SSH agent is not available.
	ErrNoSSHAgent = errors.New("ssh-agent not available")

	// ErrNoSSHKeys is returned when no SSH keys are found.
	ErrNoSSHKeys = errors.New("no SSH keys found")

	// ErrKeyNotFound is returned when a specific key is not found in the agent.
	ErrKeyNotFound = errors.New("SSH key not found in agent")

	// ErrInvalidKeyFormat is returned when key material cannot be parsed.
	ErrInvalidKeyFormat = errors.New("invalid SSH key format")

	// ErrKeyExists is returned when a key file already occupies the target path.
	ErrKeyExists = errors.New("SSH key already exists")

	// ErrKeyPathCollision is returned when another profile uses the key path.
	ErrKeyPathCollision = errors.New("SSH key path already used by another profile")

	// ErrInsecurePermissions is returned when a private key stays readable
	// by group or others after tightening.
	ErrInsecurePermissions = errors.New("private key permissions too open")
)

// KeyPathCollisionError names the profile that already owns a key path.
type KeyPathCollisionError struct {
	Path    string
	Profile string
}

func (e *KeyPathCollisionError) Error() string {
	return fmt.Sprintf("key path %s is already used by profile %q", e.Path, e.Profile)
}

func (e *KeyPathCollisionError) Unwrap() error {
	return ErrKeyPathCollision
}
