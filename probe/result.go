package probe

import (
	"regexp"
	"strings"
	"time"
)

// Outcome classifies a connectivity check.
type Outcome string

// Probe outcomes.
const (
	Authenticated   Outcome = "authenticated"
	AuthDenied      Outcome = "auth denied"
	HostUnreachable Outcome = "host unreachable"
	Timeout         Outcome = "timeout"
	UnknownFailure  Outcome = "unknown failure"
)

// Method names how a check was performed.
type Method string

// Probe methods.
const (
	MethodSSH   Method = "ssh"
	MethodToken Method = "token"
)

// Result is the classified answer of one check.
type Result struct {
	Profile  string
	Method   Method
	Target   string
	Outcome  Outcome
	Username string        // set for Authenticated
	Duration time.Duration // elapsed time, or the ceiling for Timeout
	Raw      string        // trimmed command output or API error
}

// OK reports whether the check authenticated.
func (r *Result) OK() bool {
	return r.Outcome == Authenticated
}

var greeting = regexp.MustCompile(`Hi ([^\s!]+)! You've successfully authenticated`)

var unreachableMarkers = []string{
	"could not resolve hostname",
	"name or service not known",
	"nodename nor servname",
	"connection refused",
	"network is unreachable",
	"no route to host",
	"connection closed by remote host",
}

// Classify maps ssh output to an outcome. GitHub greets authenticated
// users by login and exits non-zero, so the output decides, not the exit
// status.
func Classify(output string) (Outcome, string) {
	if m := greeting.FindStringSubmatch(output); m != nil {
		return Authenticated, m[1]
	}

	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "too many authentication failures"):
		return AuthDenied, ""
	case strings.Contains(lower, "timed out"):
		return Timeout, ""
	}
	for _, marker := range unreachableMarkers {
		if strings.Contains(lower, marker) {
			return HostUnreachable, ""
		}
	}
	return UnknownFailure, ""
}
