package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/procwing/procwing/types"
)

const (
	lockSuffix = ".lock"

	// DefaultLockTimeout bounds how long a mutation waits for the lock.
	DefaultLockTimeout = 10 * time.Second
	// DefaultLockStale is the age past which a lock file is presumed
	// abandoned by a crashed holder and eligible for forced removal.
	DefaultLockStale = 30 * time.Second

	lockPollInterval = 50 * time.Millisecond
)

// mutationLock is a filesystem mutual-exclusion primitive guarding one store
// file across independent processes. Exclusivity comes from the create-
// exclusive open of a sibling lock file; contenders poll until the holder
// releases, the lock goes stale, or the timeout elapses.
type mutationLock struct {
	path    string // lock file path (store file + ".lock")
	timeout time.Duration
	stale   time.Duration
}

func newMutationLock(storePath string, timeout, stale time.Duration) *mutationLock {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if stale <= 0 {
		stale = DefaultLockStale
	}
	return &mutationLock{path: storePath + lockSuffix, timeout: timeout, stale: stale}
}

// Acquire blocks until the lock is held or the timeout elapses. The returned
// error is always an unavailable ProcessError on failure.
func (l *mutationLock) Acquire() error {
	deadline := time.Now().Add(l.timeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// The content is diagnostic only; exclusivity comes from O_EXCL.
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + " " + time.Now().UTC().Format(time.RFC3339Nano) + "\n")
			_ = f.Close()
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return types.Unavailablef("create lock file %s: %v", l.path, err)
		}

		if l.removeIfStale() {
			continue
		}

		if time.Now().After(deadline) {
			return types.Unavailablef("timed out after %s waiting for lock %s", l.timeout, l.path)
		}
		time.Sleep(lockPollInterval)
	}
}

// Release removes the lock file. Best effort: a missing file means a
// contender already reclaimed a stale lock, which is fine.
func (l *mutationLock) Release() {
	_ = os.Remove(l.path)
}

// removeIfStale deletes the lock file when it is older than the staleness
// threshold. Returns true if a retry should happen immediately.
func (l *mutationLock) removeIfStale() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		// Holder released between our open attempt and the stat; retry now.
		return errors.Is(err, fs.ErrNotExist)
	}
	if time.Since(info.ModTime()) <= l.stale {
		return false
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false
	}
	fmt.Fprintf(os.Stderr, "procwing: removed stale lock %s (age > %s)\n", l.path, l.stale)
	return true
}
