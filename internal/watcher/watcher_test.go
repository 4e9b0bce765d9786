package watcher

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
	"go.uber.org/zap"
)

func TestWatcherTriggersOnDatasetFile(t *testing.T) {
	dir := t.TempDir()
	var triggers atomic.Int32
	w := New(dir, func() { triggers.Add(1) }, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond) // let the inotify watch attach

	name := filepath.Join(dir, "ICON_iko_single_level_elements_world_T_2M_2017120300_006.grib2.bz2")
	require.NoError(t, os.WriteFile(name, []byte("BZh-payload"), 0o644))

	assert.Eventually(t, func() bool { return triggers.Load() == 1 },
		10*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	w := New(t.TempDir(), func() {}, zap.NewNop())

	assert.False(t, w.relevant(fsnotify.Event{Name: "notes.txt", Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "run.grib2", Op: fsnotify.Remove}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "run.grib2", Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "run.grb2", Op: fsnotify.Write}))
}

func TestWatcherFailsOnMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func() {}, zap.NewNop())
	err := w.Run(context.Background())
	require.Error(t, err)
}
