// Package filelock serializes writers of workspace files (the last-analysis
// snapshot, the config next_id counter) across processes with an advisory lock.
package filelock

import (
	"fmt"
	"os"
)

const lockFileMode = 0o600

// Suffix is appended to a guarded file's path to name its lock file.
const Suffix = ".lock"

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if needed, and blocks while another process holds it. The returned
// function releases the lock.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

// Guard runs fn while holding the lock for target (target + Suffix).
func Guard(target string, fn func() error) (err error) {
	unlock, err := Lock(target + Suffix)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); err == nil {
			err = uerr
		}
	}()
	return fn()
}
