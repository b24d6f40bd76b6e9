// Package sshconfig reads and rewrites OpenSSH client configuration files
// structurally.
//
// A file is modelled as a preamble (everything before the first Host or Match
// line) followed by ordered blocks. Each block keeps its raw lines, so a file
// that is parsed and serialized without edits is reproduced byte for byte.
// Edits operate on whole blocks: [File.Upsert] removes every block routing a
// given alias and appends a fresh managed block.
package sshconfig
