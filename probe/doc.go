// Package probe checks whether a profile can actually reach GitHub.
//
// Test runs `ssh -T` in batch mode against the profile's Host alias and
// classifies the server's answer. TestToken asks the REST API who the
// profile's token belongs to. Both report failed authentication as a
// Result, and return an error only when the check itself could not run.
package probe
