package lock

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

const helperEnv = "CURATOR_LOCK_TEST_HELPER"

// TestMain lets the test binary double as a lock-contending child process.
func TestMain(m *testing.M) {
	if arg := os.Getenv(helperEnv); arg != "" {
		os.Exit(runHelper(arg))
	}
	os.Exit(m.Run())
}

// runHelper increments a counter file N times under the lock.
// arg is "<lockPath>|<counterPath>|<iterations>".
func runHelper(arg string) int {
	parts := strings.Split(arg, "|")
	if len(parts) != 3 {
		return 90
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 91
	}
	l := NewFileLock(parts[0])
	for i := 0; i < n; i++ {
		unlock, err := l.Lock()
		if err != nil {
			return 92
		}
		if err := incrementCounter(parts[1]); err != nil {
			_ = unlock()
			return 93
		}
		if err := unlock(); err != nil {
			return 94
		}
	}
	return 0
}

func incrementCounter(path string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	v := 0
	if len(data) > 0 {
		if v, err = strconv.Atoi(strings.TrimSpace(string(data))); err != nil {
			return err
		}
	}
	// widen the race window
	time.Sleep(time.Millisecond)
	return os.WriteFile(path, []byte(strconv.Itoa(v+1)), 0o644)
}

func readCounter(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parse counter %q: %v", data, err)
	}
	return v
}

func TestLock_CreatesFileAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".curator_state.json.lock")
	l := NewFileLock(path)

	unlock, err := l.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := unlock(); err != nil {
		t.Errorf("second unlock should be a no-op, got %v", err)
	}

	unlock, err = l.Lock()
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = unlock()
	if _, err := os.Stat(path); err != nil {
		t.Error("lock file should persist after release")
	}
}

func TestLock_OpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "x.lock")
	_, err := NewFileLock(path).Lock()
	if errors.GetCode(err) != errors.ELockFailed {
		t.Fatalf("err = %v, want E_LOCK_FAILED", err)
	}

	// the mutex must not stay held after a failed acquisition
	done := make(chan struct{})
	go func() {
		_, _ = NewFileLock(path).Lock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second Lock blocked after failed acquisition")
	}
}

func TestLock_GoroutinesSerialize(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "state.lock")
	counter := filepath.Join(dir, "counter")

	const workers, iterations = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := NewFileLock(lockPath)
			for i := 0; i < iterations; i++ {
				unlock, err := l.Lock()
				if err != nil {
					errs <- err
					return
				}
				err = incrementCounter(counter)
				_ = unlock()
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	if got := readCounter(t, counter); got != workers*iterations {
		t.Errorf("counter = %d, want %d (lost updates)", got, workers*iterations)
	}
}

func TestLock_ProcessesSerialize(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "state.lock")
	counter := filepath.Join(dir, "counter")

	const procs, iterations = 8, 5
	cmds := make([]*exec.Cmd, procs)
	for i := range cmds {
		cmd := exec.Command(os.Args[0], "-test.run=^$")
		cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%s|%s|%d", helperEnv, lockPath, counter, iterations))
		if err := cmd.Start(); err != nil {
			t.Fatalf("start helper %d: %v", i, err)
		}
		cmds[i] = cmd
	}
	for i, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			t.Fatalf("helper %d: %v", i, err)
		}
	}

	if got := readCounter(t, counter); got != procs*iterations {
		t.Errorf("counter = %d, want %d (lost updates)", got, procs*iterations)
	}
}

func TestProcessLock_SharesMutexWithFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.lock")
	unlock, err := NewFileLock(path).Lock()
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan struct{})
	go func() {
		u, _ := NewProcessLock(path).Lock()
		close(acquired)
		_ = u()
	}()

	select {
	case <-acquired:
		t.Fatal("process lock acquired while file lock held")
	case <-time.After(50 * time.Millisecond):
	}
	_ = unlock()
	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("process lock never acquired")
	}
}
