// Package flock provides exclusive, non-blocking advisory file locks.
//
// The session store locks each record file while writing so two remedy
// processes sharing a session directory cannot interleave writes. The
// lock is advisory: readers are unaffected, and the store's atomic
// rename keeps reads consistent without one.
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // another writer holds the record
//	}
//	defer flock.Unlock(file.Fd())
package flock
