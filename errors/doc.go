// Package errors turns ghup failures into messages a user can act on.
//
// Core types:
//   - CLIError: wraps an error with message, suggestion, and details
//   - Messenger: interface for customizing the text per failure kind
//
// Describe maps every error kind returned by the profile store, key
// manager, switch engine and connectivity tester to a CLIError:
//
//	if err := run(); err != nil {
//	    cliErr := errors.Describe(err)
//	    fmt.Fprintln(os.Stderr, cliErr.Error())
//	    os.Exit(errors.ExitCode(err))
//	}
//
// Predicates classify errors without presentation:
//
//	if errors.IsPartial(err) {
//	    // identity switched, SSH routing did not
//	}
package errors
