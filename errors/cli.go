package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bangunx/ghup/auth"
	"github.com/bangunx/ghup/auth/ssh"
	"github.com/bangunx/ghup/probe"
	"github.com/bangunx/ghup/profile"
	"github.com/bangunx/ghup/switcher"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Messenger provides the text for each failure kind.
// Embed DefaultMessenger to override only some of them.
type Messenger interface {
	CorruptMessage(path string) (message, suggestion string)
	PersistMessage(path string) (message, suggestion string)
	DuplicateNameMessage() (message, suggestion string)
	DuplicateAliasMessage() (message, suggestion string)
	NotFoundMessage() (message, suggestion string)
	InvalidProfileMessage() (message, suggestion string)
	KeyExistsMessage() (message, suggestion string)
	InvalidKeyMessage() (message, suggestion string)
	KeyPathCollisionMessage(path, owner string) (message, suggestion string)
	InsecureKeyMessage() (message, suggestion string)
	NotAGitRepoMessage() (message, suggestion string)
	SSHConfigWriteMessage(path string) (message, suggestion string)
	PartialSwitchMessage(profile string) (message, suggestion string)
	ExecutionMessage(binary string) (message, suggestion string)
	TokenRequiredMessage() (message, suggestion string)
	NoProfilesMessage() (message, suggestion string)
}

// DefaultMessenger provides ghup's default messages.
type DefaultMessenger struct{}

func (DefaultMessenger) CorruptMessage(path string) (string, string) {
	return fmt.Sprintf("The profile file %s could not be read.", path),
		"Fix the file by hand or move it aside; ghup will not overwrite it."
}

func (DefaultMessenger) PersistMessage(path string) (string, string) {
	return fmt.Sprintf("The profile file %s could not be written.", path),
		"Check that the directory exists and is writable."
}

func (DefaultMessenger) DuplicateNameMessage() (string, string) {
	return "A profile with that name already exists.",
		"Choose another name, or use 'ghup edit' to change the existing profile."
}

func (DefaultMessenger) DuplicateAliasMessage() (string, string) {
	return "Another profile already uses that SSH host alias.",
		"Pass a different --alias."
}

func (DefaultMessenger) NotFoundMessage() (string, string) {
	return "No profile has that name.", "Run 'ghup list' to see configured profiles."
}

func (DefaultMessenger) InvalidProfileMessage() (string, string) {
	return "The profile is not valid.", ""
}

func (DefaultMessenger) KeyExistsMessage() (string, string) {
	return "A key file already exists at that path.",
		"Pass --force to overwrite it, or choose another --key path."
}

func (DefaultMessenger) InvalidKeyMessage() (string, string) {
	return "That file is not a usable SSH private key.",
		"Import the private key file (not the .pub); encrypted keys need their .pub next to them."
}

func (DefaultMessenger) KeyPathCollisionMessage(path, owner string) (string, string) {
	return fmt.Sprintf("The key %s is already used by profile %q.", path, owner),
		"Each profile needs its own key; GitHub rejects a key registered on two accounts."
}

func (DefaultMessenger) InsecureKeyMessage() (string, string) {
	return "The private key is readable by other users and could not be fixed.",
		"Run 'chmod 600' on the key, or move it to a filesystem that supports permissions."
}

func (DefaultMessenger) NotAGitRepoMessage() (string, string) {
	return "This command must be run from within a git repository.",
		"Change into a repository, pass --repo, or use 'ghup switch --global'."
}

func (DefaultMessenger) SSHConfigWriteMessage(path string) (string, string) {
	return fmt.Sprintf("The SSH config %s could not be updated.", path),
		"Check the file's permissions and syntax."
}

func (DefaultMessenger) PartialSwitchMessage(name string) (string, string) {
	return fmt.Sprintf("Git identity switched to %q, but SSH routing failed.", name),
		"Fix the SSH config problem below and run the switch again."
}

func (DefaultMessenger) ExecutionMessage(binary string) (string, string) {
	return fmt.Sprintf("Could not run %s.", binary),
		"Install OpenSSH or set ssh_binary in the ghup config."
}

func (DefaultMessenger) TokenRequiredMessage() (string, string) {
	return "This profile has no token.", "Add one with 'ghup edit <name> --token-stdin'."
}

func (DefaultMessenger) NoProfilesMessage() (string, string) {
	return "No profiles are configured yet.", "Add one with 'ghup add'."
}

// WrapConfig configures error description.
type WrapConfig struct {
	Messenger Messenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m Messenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) Messenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// Describe maps err to a CLIError. The returned error still unwraps to err.
// Unknown errors keep their own text as the message.
func Describe(err error, opts ...Option) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	m := getMessenger(opts)
	build := func(msg, suggestion string) *CLIError {
		return &CLIError{Err: err, Message: msg, Suggestion: suggestion, Details: err.Error()}
	}

	var (
		corrupt   *profile.CorruptError
		persist   *profile.PersistError
		collision *ssh.KeyPathCollisionError
		partial   *switcher.PartialSwitchError
		sshWrite  *switcher.SSHConfigWriteError
		execErr   *probe.ExecutionError
	)
	switch {
	case errors.As(err, &partial):
		return build(m.PartialSwitchMessage(partial.Profile))
	case errors.As(err, &sshWrite):
		return build(m.SSHConfigWriteMessage(sshWrite.Path))
	case errors.As(err, &corrupt):
		return build(m.CorruptMessage(corrupt.Path))
	case errors.As(err, &persist):
		return build(m.PersistMessage(persist.Path))
	case errors.As(err, &collision):
		msg, s := m.KeyPathCollisionMessage(collision.Path, collision.Profile)
		return &CLIError{Err: err, Message: msg, Suggestion: s}
	case errors.As(err, &execErr):
		return build(m.ExecutionMessage(execErr.Binary))
	case errors.Is(err, profile.ErrDuplicateName):
		return build(m.DuplicateNameMessage())
	case errors.Is(err, profile.ErrDuplicateAlias):
		return build(m.DuplicateAliasMessage())
	case errors.Is(err, profile.ErrNotFound):
		return build(m.NotFoundMessage())
	case errors.Is(err, profile.ErrInvalidProfile):
		return build(m.InvalidProfileMessage())
	case errors.Is(err, ssh.ErrKeyExists):
		return build(m.KeyExistsMessage())
	case errors.Is(err, ssh.ErrInvalidKeyFormat):
		return build(m.InvalidKeyMessage())
	case errors.Is(err, ssh.ErrInsecurePermissions):
		return build(m.InsecureKeyMessage())
	case errors.Is(err, switcher.ErrNotAGitRepo):
		return build(m.NotAGitRepoMessage())
	case errors.Is(err, auth.ErrTokenRequired):
		return build(m.TokenRequiredMessage())
	case errors.Is(err, ErrNoProfiles):
		msg, s := m.NoProfilesMessage()
		return &CLIError{Err: err, Message: msg, Suggestion: s}
	}
	return &CLIError{Err: err, Message: err.Error()}
}
