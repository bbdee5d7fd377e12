package classgen

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{isCompanion: newTestGenerator().IsCompanion}

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"zoo.go", fsnotify.Write, true},
		{"zoo.go", fsnotify.Create, true},
		{"zoo.go", fsnotify.Remove, true},
		{"zoo.go", fsnotify.Chmod, false},
		{"zoo_dynasty.go", fsnotify.Write, false},
		{"zoo_dynasty_test.go", fsnotify.Write, false},
		{"README.md", fsnotify.Write, false},
		{".zoo.go", fsnotify.Write, false},
		{"#zoo.go", fsnotify.Write, false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.op.String(), func(t *testing.T) {
			got := w.relevant(fsnotify.Event{Name: filepath.Join("/src", tt.name), Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcher_OwnWrites(t *testing.T) {
	w := &Watcher{ownWrites: map[string]bool{}}
	w.MarkOwnWrites("/src/./zoo.go")

	assert.True(t, w.checkOwnWrite("/src/zoo.go"))
	assert.False(t, w.checkOwnWrite("/src/zoo.go"), "flag is cleared after one event")
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "zoo.go")
	require.NoError(t, os.WriteFile(source, []byte("package zoo\n"), 0644))

	var calls atomic.Int32
	w, err := newTestGenerator().NewWatcher([]string{dir}, 20*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// A companion write alone does not trigger regeneration.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo_dynasty.go"), []byte("package zoo\n"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// Several quick edits collapse into one run.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(source, []byte("package zoo\n\ntype Animal struct{}\n"), 0644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := newTestGenerator().NewWatcher([]string{filepath.Join(t.TempDir(), "missing")}, time.Millisecond, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestWatcher_RegenerationsDoNotOverlap(t *testing.T) {
	var running, maxRunning, calls atomic.Int32
	w := &Watcher{
		debouncePeriod: time.Millisecond,
		pending:        map[string]bool{},
		onChange: func(ctx context.Context) error {
			n := running.Add(1)
			for {
				m := maxRunning.Load()
				if n <= m || maxRunning.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			running.Add(-1)
			calls.Add(1)
			return nil
		},
	}

	ctx := context.Background()
	w.schedule(ctx, "zoo.go")
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)

	// Fires while the first run is still sleeping.
	w.schedule(ctx, "birds.go")

	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())
	w.stopTimer()
}
