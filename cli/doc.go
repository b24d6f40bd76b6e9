// Package cli implements the ghup command line.
//
// Every command resolves settings and builds a ghup.Services in the root
// command's pre-run hook; handlers fetch it from the command context and
// call one or two core operations. Errors surface through Execute, which
// renders them with errors.Describe and maps them to exit codes.
package cli
