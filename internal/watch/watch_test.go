package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func startWatcher(t *testing.T, opts Options, run RunFunc) (*Watcher, context.CancelFunc) {
	t.Helper()
	w, err := New(opts, run, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return w, cancel
}

func TestWatchFileChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "intrig.yaml")
	require.NoError(t, os.WriteFile(file, []byte("version: 1.0.0\n"), 0644))

	var calls atomic.Int32
	w, _ := startWatcher(t, Options{Files: []string{file}, Debounce: 20 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(file, []byte("version: 1.1.0\n"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	require.GreaterOrEqual(t, w.Runs(), 1)
}

func TestWatchDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "petstore.yaml")
	require.NoError(t, os.WriteFile(file, []byte("openapi: 3.0.0\n"), 0644))

	var calls atomic.Int32
	startWatcher(t, Options{Files: []string{file}, Debounce: 200 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	for i := range 5 {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i)}, 0644))
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "intrig.yaml")
	require.NoError(t, os.WriteFile(file, []byte("version: 1.0.0\n"), 0644))

	var calls atomic.Int32
	startWatcher(t, Options{Files: []string{file}, Debounce: 20 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestWatchDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(nested, 0755))

	var calls atomic.Int32
	startWatcher(t, Options{Dirs: []string{dir}, Debounce: 20 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(nested, "type.tmpl"), []byte("---\nfilePath: x\n---\n"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatchKeepsRunningAfterFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "intrig.yaml")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0644))

	var calls atomic.Int32
	startWatcher(t, Options{Files: []string{file}, Debounce: 20 * time.Millisecond}, func(ctx context.Context) error {
		calls.Add(1)
		return context.DeadlineExceeded
	})

	require.NoError(t, os.WriteFile(file, []byte("b"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("c"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(Options{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, func(context.Context) error { return nil }, nil)
	require.Error(t, err)
}
