//go:build windows

package flock

import "golang.org/x/sys/windows"

// LockFileEx locks an explicit byte range rather than the whole file;
// locking the first byte is the conventional whole-file advisory lock.
const (
	lockReserved = 0
	rangeLow     = 1
	rangeHigh    = 0
)

// Exclusive takes a non-blocking exclusive lock on fd. It fails
// immediately when another process already holds the lock.
func Exclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		lockReserved,
		rangeLow,
		rangeHigh,
		&windows.Overlapped{},
	)
}

// Unlock releases the lock held on fd.
func Unlock(fd uintptr) error {
	return windows.UnlockFileEx(
		windows.Handle(fd),
		lockReserved,
		rangeLow,
		rangeHigh,
		&windows.Overlapped{},
	)
}
