// Package fsutil provides the file primitives shared by the profile store,
// the key manager, and the switch engine:
//   - WriteFileAtomic: temp file in the target directory, fsync, rename
//   - Lock: advisory cross-process lock backed by gofrs/flock
//
// A failed write never leaves a truncated target or a stray temp file.
package fsutil
