//go:build unix

package db

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newLockDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, dataDir), 0755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	return dir
}

func TestWriteLockerRecordsHolder(t *testing.T) {
	dir := newLockDir(t)
	locker := newWriteLocker(dir)

	if err := locker.acquire("save default behavior", time.Second); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	h, ok := locker.holder()
	if !ok {
		t.Fatal("expected a holder record")
	}
	if h.PID != os.Getpid() || h.Op != "save default behavior" || h.Since.IsZero() {
		t.Errorf("holder = %+v", h)
	}
	if s := h.String(); strings.Contains(s, "gone") {
		t.Errorf("live holder reported gone: %s", s)
	}

	locker.release()
	if _, ok := locker.holder(); ok {
		t.Error("holder record should be cleared on release")
	}
}

func TestWriteLockerBusy(t *testing.T) {
	dir := newLockDir(t)

	first := newWriteLocker(dir)
	if err := first.acquire("delete integration", time.Second); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer first.release()

	err := newWriteLocker(dir).acquire("add recipient", 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected the second writer to time out")
	}
	for _, want := range []string{"add recipient", "busy", "delete integration"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestWriteLockSerializesWriters(t *testing.T) {
	dir := newLockDir(t)
	database := &DB{baseDir: dir}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		overlap bool
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				err := database.withWriteLockTimeout("test write", 5*time.Second, func() error {
					mu.Lock()
					inside++
					overlap = overlap || inside > 1
					mu.Unlock()

					time.Sleep(time.Millisecond)

					mu.Lock()
					inside--
					mu.Unlock()
					return nil
				})
				if err != nil {
					t.Errorf("withWriteLock failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if overlap {
		t.Error("two writers held the lock at once")
	}
}

func TestLockHolderStaleProcess(t *testing.T) {
	// PIDs above the default pid_max are never live
	h := lockHolder{PID: 1 << 30, Op: "save notification behavior", Since: time.Now()}
	if !strings.HasSuffix(h.String(), "process gone") {
		t.Errorf("String() = %q", h.String())
	}
}
