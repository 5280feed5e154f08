package worker

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/thinning/internal/filelock"
	"github.com/raoulx24/thinning/internal/fs"
	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/mailbox"
	"github.com/raoulx24/thinning/internal/retention"
	"github.com/raoulx24/thinning/internal/thinning"
)

var tightPolicy = retention.Policy{MonthlyGapDays: 28, WeeklyGapDays: 7, WeeklyWindowDays: 0, KeepLatest: 1}

func memRoot() *fs.MemFS {
	m := fs.NewMemFS()
	m.AddDir("/b/2020-01-01")
	m.AddDir("/b/2020-01-02")
	m.AddDir("/b/2020-01-03")
	return m
}

func newWorker(m fs.FS, lockFile string) *Worker {
	d := thinning.New(m, retention.New(tightPolicy), logging.Nop{}, false)
	return New(Settings{Roots: []string{"/b"}, LockFile: lockFile, Driver: d}, logging.Nop{}, mailbox.New[Job]())
}

func TestHandle_RunsPass(t *testing.T) {
	m := memRoot()
	w := newWorker(m, filepath.Join(t.TempDir(), "thinning.lock"))

	c, err := w.Handle(Job{Trigger: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, thinning.Counters{Total: 3, Kept: 2, Removed: 1}, c)
	assert.Equal(t, []string{"/b/2020-01-02"}, m.Removed())
}

func TestHandle_LockHeld(t *testing.T) {
	m := memRoot()
	lockPath := filepath.Join(t.TempDir(), "thinning.lock")
	held := filelock.NewFileLock(lockPath)
	require.NoError(t, held.TryLock())
	defer held.Unlock()

	_, err := newWorker(m, lockPath).Handle(Job{})
	assert.ErrorIs(t, err, filelock.ErrLocked)
	assert.Empty(t, m.Removed())
}

func TestSchedule_RejectsBadSpec(t *testing.T) {
	w := newWorker(memRoot(), "")
	assert.Error(t, w.Schedule("every tuesday"))
	assert.NoError(t, w.Schedule("30 3 * * *"))
	assert.NoError(t, w.Schedule("@daily"))
}

func TestStart_ProcessesTriggerAndStops(t *testing.T) {
	m := memRoot()
	w := newWorker(m, "")
	require.NoError(t, w.Schedule("@yearly"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	w.Trigger()
	assert.Eventually(t, func() bool { return len(m.Removed()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestUpdateConfig(t *testing.T) {
	m := memRoot()
	m.AddDir("/other/2020-01-01")
	m.AddDir("/other/2020-01-02")
	m.AddDir("/other/2020-01-03")
	w := newWorker(m, "")

	d := thinning.New(m, retention.New(tightPolicy), logging.Nop{}, true)
	w.UpdateConfig(Settings{Roots: []string{"/other"}, Driver: d})

	c, err := w.Handle(Job{})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Removed)
	assert.Empty(t, m.Removed(), "dry-run driver")
}

func TestTrigger_Coalesces(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewConsole(&buf, logging.LevelDebug, logging.ColorNever)
	mb := mailbox.New[Job]()
	d := thinning.New(memRoot(), retention.New(tightPolicy), logging.Nop{}, true)
	w := New(Settings{Roots: []string{"/b"}, Driver: d}, log, mb)

	w.Trigger()
	w.Trigger()
	assert.Contains(t, buf.String(), "pass already pending, coalescing trigger")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, ok := mb.Take(ctx)
	assert.True(t, ok)
	_, ok = mb.Take(ctx)
	assert.False(t, ok, "second trigger collapsed into the first")
}
