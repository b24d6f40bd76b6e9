package git

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes external commands. Implementations return trimmed
// stdout on success and a *CommandError on failure.
type CommandRunner interface {
	Run(workDir, name string, args ...string) (string, error)
}

// CommandError describes a failed command invocation.
type CommandError struct {
	Command  string
	Args     []string
	Output   string // stderr, or stdout when stderr was empty
	ExitCode int    // -1 when the process never ran
	Err      error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// exitCode returns the exit code carried by err, or -1.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env, when set, replaces the process environment of spawned commands.
	Env []string
}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in workDir.
func (r *ExecRunner) Run(workDir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = workDir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return output, &CommandError{
			Command:  name,
			Args:     args,
			Output:   output,
			ExitCode: code,
			Err:      err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// MockResponse is a canned result for MockRunner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation made through MockRunner.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner is a CommandRunner for tests. Responses are looked up by the
// full command line first, then by command name, then the wildcard.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation binds a response to a command line.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand starts an expectation for an exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// OnAnyCommand starts an expectation matching every command.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: "*"}
}

// Return sets the response for the expectation.
func (e *MockExpectation) Return(stdout string, err error) *MockRunner {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
	return e.runner
}

// Run records the call and returns the matching canned response.
func (m *MockRunner) Run(workDir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})

	for _, key := range []string{commandKey(name, args), name, "*"} {
		if resp, ok := m.Responses[key]; ok {
			return resp.Stdout, resp.Err
		}
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a call started with name followed by args.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.Calls {
		if c.Command != name || len(c.Args) < len(args) {
			continue
		}
		if argsMatch(c.Args[:len(args)], args) {
			return true
		}
	}
	return false
}

// CallCount returns how many calls were made to name.
func (m *MockRunner) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Command == name {
			n++
		}
	}
	return n
}

func commandKey(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
