//go:build !unix

package cache

// FileLocker is a no-op where flock(2) is unavailable; concurrent launcher
// processes are not serialised on these platforms.
type FileLocker struct{}

// Lock always succeeds immediately
func (FileLocker) Lock(string) (func() error, error) {
	return func() error { return nil }, nil
}

// TryLock always succeeds immediately
func (FileLocker) TryLock(string) (func() error, bool, error) {
	return func() error { return nil }, true, nil
}
