package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startWatcher(t *testing.T, path string, opts ...WatcherOption) (*Watcher, *atomic.Int32) {
	t.Helper()
	var changes atomic.Int32
	opts = append([]WatcherOption{
		WithDebounceDuration(30 * time.Millisecond),
		WithPollInterval(40 * time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	}, opts...)
	w, err := NewWatcher(path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w, &changes
}

func TestWatcher_DetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, changes := startWatcher(t, path)

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("token: bb\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "write notification", func() bool { return changes.Load() > 0 })
}

func TestWatcher_PollingDetectsLoginAndLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	w, changes := startWatcher(t, path, WithForcePoll(true))
	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}

	// login: file appears
	if err := os.WriteFile(path, []byte("token: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "create notification", func() bool { return changes.Load() >= 1 })

	// logout: file removed
	seen := changes.Load()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "remove notification", func() bool { return changes.Load() > seen })
}

func TestWatcher_FsnotifyDetectsRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	w, changes := startWatcher(t, path)
	if w.IsPolling() {
		t.Skip("fsnotify unavailable")
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "remove notification", func() bool { return changes.Load() > 0 })
}

func TestWatcher_ChangedChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	w, _ := startWatcher(t, path, WithForcePoll(true))

	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("no signal on Changed()")
	}
}

func TestWatcher_MissingDirectoryFallsBackToPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-yet", "session.yaml")
	w, _ := startWatcher(t, path)
	if !w.IsPolling() {
		t.Error("expected polling when the parent directory is missing")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("STK_FORCE_POLL", "yes")
	w, _ := startWatcher(t, filepath.Join(t.TempDir(), "session.yaml"))
	if !w.IsPolling() {
		t.Error("STK_FORCE_POLL should force polling")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "session.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("still started after Stop()")
	}
	w.Stop()
	if err := w.Start(); err != nil {
		t.Errorf("restart failed: %v", err)
	}
	w.Stop()
}

func TestWatcher_NoNotifyAfterStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	w, changes := startWatcher(t, path, WithForcePoll(true))
	w.Stop()
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := changes.Load(); n != 0 {
		t.Errorf("got %d notifications after Stop()", n)
	}
}

func TestWatcher_Path(t *testing.T) {
	w, err := NewWatcher("relative.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("expected absolute path, got %q", w.Path())
	}
}

func TestEnvBool(t *testing.T) {
	for v, want := range map[string]bool{"1": true, "TRUE": true, " on ": true, "0": false, "no": false, "": false} {
		t.Setenv("STK_TEST_BOOL", v)
		if got := envBool("STK_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", v, got, want)
		}
	}
}
