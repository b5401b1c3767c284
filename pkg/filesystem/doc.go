// Package filesystem provides the afero filesystems uklient runs against and
// the few helpers afero itself lacks: Lstat that works on every backend,
// permission-preserving file copies and recursive directory copies with
// overwrite semantics.
package filesystem
