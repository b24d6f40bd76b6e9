package switcher

import (
	"errors"
	"fmt"

	"github.com/bangunx/ghup/git"
)

// Switch errors.
var (
	// ErrNotAGitRepo indicates the target path is outside a git work tree.
	ErrNotAGitRepo = git.ErrNotGitRepo

	// ErrSSHConfigWrite indicates the SSH client config could not be updated.
	ErrSSHConfigWrite = errors.New("cannot update SSH config")

	// ErrPartialSwitch indicates the git identity was applied but SSH
	// routing was not.
	ErrPartialSwitch = errors.New("identity switched, but SSH routing failed")
)

// Step names a stage of a switch.
type Step string

// Switch steps in execution order.
const (
	StepResolve       Step = "resolve repository"
	StepReadIdentity  Step = "read identity"
	StepSetName       Step = "set user.name"
	StepSetEmail      Step = "set user.email"
	StepListRemotes   Step = "list remotes"
	StepRewriteRemote Step = "rewrite remote"
)

// StepError reports which step of a switch failed.
type StepError struct {
	Step   Step
	Remote string // set for remote steps
	Err    error
}

func (e *StepError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("%s %s: %v", e.Step, e.Remote, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// SSHConfigWriteError reports a failed SSH config update.
type SSHConfigWriteError struct {
	Path string
	Err  error
}

func (e *SSHConfigWriteError) Error() string {
	return fmt.Sprintf("update SSH config %s: %v", e.Path, e.Err)
}

func (e *SSHConfigWriteError) Unwrap() []error {
	return []error{ErrSSHConfigWrite, e.Err}
}

// PartialSwitchError is returned by SwitchGlobal when the git identity was
// written but the SSH config was not. The identity is not rolled back.
type PartialSwitchError struct {
	Profile string
	Err     error
}

func (e *PartialSwitchError) Error() string {
	return fmt.Sprintf("profile %q: %v: %v", e.Profile, ErrPartialSwitch, e.Err)
}

func (e *PartialSwitchError) Unwrap() []error {
	return []error{ErrPartialSwitch, e.Err}
}
