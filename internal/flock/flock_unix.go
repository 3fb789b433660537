//go:build unix

package flock

import "golang.org/x/sys/unix"

// Exclusive takes a non-blocking exclusive lock on fd. It fails
// immediately when another process already holds the lock.
func Exclusive(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB)
}

// Unlock releases the lock held on fd.
func Unlock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
