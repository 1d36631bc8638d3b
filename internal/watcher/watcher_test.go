package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, target string, delay time.Duration) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New(target, func() { calls.Add(1) }, WithDelay(delay))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx, nil)
	return &calls
}

func TestWatcher_File(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(target, []byte("[]"), 0o600))

	calls := start(t, target, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(target, []byte(`[{"title":"a"}]`), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	calls := start(t, dir, 200*time.Millisecond)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "t.md"), []byte{byte('a' + i)}, 0o600))
	}
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_MissingTarget(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func() {})
	assert.Error(t, err)
}
