package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen/compiler"
)

func TestWatcherRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(src, []byte("class A {};"), 0o644))

	var runs atomic.Int32
	w, err := New(compiler.ManagerSettings{Directories: []string{dir}}, func(context.Context) *compiler.Report {
		runs.Add(1)
		return &compiler.Report{Completed: true}
	})
	require.NoError(t, err)
	w.Debounce = 20 * time.Millisecond
	reports := make(chan *compiler.Report, 8)
	w.OnReport = func(r *compiler.Report) { reports <- r }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-reports:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	// A burst of writes collapses into one run.
	for i := range 3 {
		require.NoError(t, os.WriteFile(src, []byte("class A { int x"+string(rune('0'+i))+"; };"), 0o644))
	}
	select {
	case <-reports:
	case <-time.After(5 * time.Second):
		t.Fatal("no run after change")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	skip := filepath.Join(dir, "third_party")
	require.NoError(t, os.MkdirAll(skip, 0o755))
	other := t.TempDir()
	single := filepath.Join(other, "single.txt")

	w, err := New(compiler.ManagerSettings{
		Files:              []string{single},
		Directories:        []string{dir},
		IgnoredFiles:       []string{filepath.Join(dir, "gen.h")},
		IgnoredDirectories: []string{skip},
	}, func(context.Context) *compiler.Report { return nil })
	require.NoError(t, err)
	defer w.fsw.Close()

	assert.True(t, w.relevant(filepath.Join(dir, "a.h")))
	assert.True(t, w.relevant(filepath.Join(dir, "sub", "b.hpp")))
	assert.True(t, w.relevant(single), "explicit files match whatever their extension")
	assert.False(t, w.relevant(filepath.Join(dir, "notes.txt")))
	assert.False(t, w.relevant(filepath.Join(dir, "gen.h")))
	assert.False(t, w.relevant(filepath.Join(skip, "c.h")))
	assert.False(t, w.relevant(filepath.Join(other, "d.h")))

	assert.Contains(t, w.Watched(), dir)
	assert.NotContains(t, w.Watched(), skip)
}

func TestNewErrors(t *testing.T) {
	_, err := New(compiler.ManagerSettings{}, nil)
	require.Error(t, err)

	_, err = New(compiler.ManagerSettings{Directories: []string{filepath.Join(t.TempDir(), "none")}},
		func(context.Context) *compiler.Report { return nil })
	require.Error(t, err)
}
