// pkg/watch/watch_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), fsnotify
// PURPOSE: Test debounced change notification over a directory tree

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/testutil"
	"github.com/arthur-debert/skillman/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	repo := t.TempDir()
	testutil.CreateFile(t, filepath.Join(repo, "writer"), "SKILL.md", "v1")

	w, err := watch.New(repo, watch.Options{
		Debounce: 50 * time.Millisecond,
		Skip:     func(name, rel string) bool { return strings.HasSuffix(rel, "node_modules") },
	})
	require.NoError(t, err)
	defer w.Close()

	changes := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			changes <- struct{}{}
			return nil
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(repo, "writer", "SKILL.md"), []byte("v2"), 0644))
	waitFor(t, changes, "edit")

	// directories created after start are watched too
	newDir := testutil.CreateDir(t, repo, "reviewer")
	waitFor(t, changes, "new directory")
	time.Sleep(100 * time.Millisecond)
	testutil.CreateFile(t, newDir, "SKILL.md", "new")
	waitFor(t, changes, "file in new directory")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	_, err := watch.New(filepath.Join(t.TempDir(), "missing"), watch.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
