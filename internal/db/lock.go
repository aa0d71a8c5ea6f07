package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName   = "db.lock"
	defaultTimeout = 500 * time.Millisecond
	initialBackoff = 5 * time.Millisecond
	maxBackoff     = 50 * time.Millisecond
)

// lockHolder is written into the lock file by whoever holds it
type lockHolder struct {
	PID   int       `json:"pid"`
	Op    string    `json:"op"`
	Since time.Time `json:"since"`
}

func (h lockHolder) String() string {
	s := fmt.Sprintf("pid %d (%s) since %s", h.PID, h.Op, h.Since.Format(time.RFC3339))
	if !isProcessAlive(h.PID) {
		s += ", process gone"
	}
	return s
}

// writeLocker serializes writers across processes with an OS file lock.
// The kernel drops the lock if the holder exits.
type writeLocker struct {
	path string
	file *os.File
}

func newWriteLocker(baseDir string) *writeLocker {
	return &writeLocker{path: filepath.Join(baseDir, dataDir, lockFileName)}
}

// acquire waits up to timeout for the lock and records op as the holder.
func (l *writeLocker) acquire(op string, timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for backoff := initialBackoff; tryLockFile(f) != nil; backoff = min(backoff*2, maxBackoff) {
		if time.Now().After(deadline) {
			f.Close()
			if h, ok := l.holder(); ok {
				return fmt.Errorf("%s: database busy after %v, held by %s", op, timeout, h)
			}
			return fmt.Errorf("%s: database busy after %v", op, timeout)
		}
		time.Sleep(backoff)
	}

	l.file = f
	data, _ := json.Marshal(lockHolder{PID: os.Getpid(), Op: op, Since: time.Now().UTC()})
	f.Truncate(0)
	f.WriteAt(data, 0)
	return nil
}

func (l *writeLocker) release() {
	if l.file == nil {
		return
	}
	l.file.Truncate(0)
	unlockFile(l.file)
	l.file.Close()
	l.file = nil
}

// holder reads the current holder record, if one is present
func (l *writeLocker) holder() (lockHolder, bool) {
	var h lockHolder
	data, err := os.ReadFile(l.path)
	if err != nil || json.Unmarshal(data, &h) != nil || h.PID == 0 {
		return lockHolder{}, false
	}
	return h, true
}

// withWriteLock runs fn while holding the database write lock. op names the
// write in the error another process sees while waiting.
func (db *DB) withWriteLock(op string, fn func() error) error {
	return db.withWriteLockTimeout(op, defaultTimeout, fn)
}

func (db *DB) withWriteLockTimeout(op string, timeout time.Duration, fn func() error) error {
	locker := newWriteLocker(db.baseDir)
	if err := locker.acquire(op, timeout); err != nil {
		return err
	}
	defer locker.release()
	return fn()
}
