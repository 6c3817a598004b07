package index

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumsync/pkg/errors"
	"albumsync/pkg/photos"
)

// fakeFolderSource serves a fixed folder listing per Load, advancing through
// snapshots to simulate the indexer catching up.
type fakeFolderSource struct {
	photos.Client

	snapshots [][]photos.Folder
	loads     int
	err       error
}

func (f *fakeFolderSource) ListFolders() ([]photos.Folder, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.loads - 1
	if idx >= len(f.snapshots) {
		idx = len(f.snapshots) - 1
	}
	return f.snapshots[idx], nil
}

func (f *fakeFolderSource) TriggerReindex() (bool, error) {
	return true, f.err
}

func TestCacheLoad(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{
		{ID: 1, Name: "/shared/mount_Trips"},
		{ID: 2, Name: "/shared/mount_Trips/Paris", Parent: 1},
		{ID: 3, Name: "/shared/mount_Trips/berlin", Parent: 1},
		{ID: 4, Name: "/shared/mount_Trips/Amsterdam", Parent: 1},
	}}}
	cache := NewCache(source)
	require.NoError(t, cache.Load())

	assert.Equal(t, 4, cache.Len())

	folder, ok := cache.LookupPath("/Shared/Mount_Trips/PARIS")
	assert.True(t, ok)
	assert.Equal(t, 2, folder.ID)

	children := cache.Children(1)
	require.Len(t, children, 3)
	assert.Equal(t, "/shared/mount_Trips/Amsterdam", children[0].Name)
	assert.Equal(t, "/shared/mount_Trips/berlin", children[1].Name)
	assert.Equal(t, "/shared/mount_Trips/Paris", children[2].Name)
}

func TestCacheLoadFailureKeepsPreviousViews(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{
		{ID: 1, Name: "/shared/mount_Trips"},
	}}}
	cache := NewCache(source)
	require.NoError(t, cache.Load())

	source.err = assert.AnError
	err := cache.Load()
	require.Error(t, err)
	assert.IsType(t, errors.RemoteIndexUnavailable{}, err)

	// The previous snapshot stays queryable.
	_, ok := cache.LookupPath("/shared/mount_Trips")
	assert.True(t, ok)
	assert.True(t, cache.Loaded())
}

func TestCacheChildrenOfPath(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{
		{ID: 2, Name: "/shared/mount_Trips/Paris"},
		{ID: 3, Name: "/shared/mount_Trips/Paris/2024"},
		{ID: 4, Name: "/shared/mount_Trips/Berlin"},
		{ID: 5, Name: "/other/Rome"},
	}}}
	cache := NewCache(source)
	require.NoError(t, cache.Load())

	children := cache.ChildrenOfPath("/shared/mount_Trips")
	require.Len(t, children, 2)
	assert.Equal(t, "/shared/mount_Trips/Berlin", children[0].Name)
	assert.Equal(t, "/shared/mount_Trips/Paris", children[1].Name)
}

func TestCacheResolvePaths(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{
		{ID: 2, Name: "/shared/mount_Trips/Paris"},
	}}}
	cache := NewCache(source)
	require.NoError(t, cache.Load())

	resolved, missing := cache.ResolvePaths([]string{
		"/shared/mount_Trips/Paris",
		"/shared/mount_Trips/Rome",
	})
	require.Len(t, resolved, 1)
	assert.Equal(t, 2, resolved[0].ID)
	assert.Equal(t, []string{"/shared/mount_Trips/Rome"}, missing)
}

func newTestWaiter(source *fakeFolderSource, attempts int) *Waiter {
	return &Waiter{
		Cache:    NewCache(source),
		Attempts: attempts,
		Delay:    0,
		Clock:    clockwork.NewRealClock(),
	}
}

func TestWaitForPathsEmptyInputSkipsPolling(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{}}}
	waiter := newTestWaiter(source, 12)

	pending, err := waiter.WaitForPaths(nil, "test")
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Zero(t, source.loads, "no remote calls for an empty wait set")
}

func TestWaitForPathsResolvesWhenIndexed(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{
		{},
		{},
		{{ID: 2, Name: "/shared/mount_Trips/Paris"}},
	}}
	waiter := newTestWaiter(source, 12)

	pending, err := waiter.WaitForPaths([]string{"/shared/mount_Trips/Paris"}, "test")
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 3, source.loads)
}

func TestWaitForPathsExhaustsAttemptBudget(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{{}}}
	waiter := newTestWaiter(source, 5)

	pending, err := waiter.WaitForPaths([]string{"/shared/mount_Trips/Paris"}, "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"/shared/mount_Trips/Paris"}, pending)
	assert.Equal(t, 5, source.loads, "exactly one load per attempt")
}

func TestWaitForPathsAbortsOnLoadFailure(t *testing.T) {
	source := &fakeFolderSource{err: assert.AnError}
	waiter := newTestWaiter(source, 12)

	pending, err := waiter.WaitForPaths([]string{"/shared/mount_Trips/Paris"}, "test")
	require.Error(t, err)
	assert.Equal(t, []string{"/shared/mount_Trips/Paris"}, pending)
	assert.Equal(t, 1, source.loads)
}

func TestWaitForFolder(t *testing.T) {
	source := &fakeFolderSource{snapshots: [][]photos.Folder{
		{},
		{{ID: 7, Name: "/shared/mount_Trips"}},
	}}
	waiter := newTestWaiter(source, 3)

	folder, ok, err := waiter.WaitForFolder("/shared/mount_Trips")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, folder.ID)
}

func TestReindexerDeduplicatesWithinRun(t *testing.T) {
	source := &fakeFolderSource{}
	clock := clockwork.NewFakeClock()
	reindexer := NewReindexer(source, clock, 0, true)

	assert.True(t, reindexer.Trigger())
	assert.True(t, reindexer.Trigger())
	assert.True(t, reindexer.Triggered())
}

func TestReindexerDisabled(t *testing.T) {
	reindexer := NewReindexer(&fakeFolderSource{}, clockwork.NewFakeClock(), time.Second, false)
	assert.False(t, reindexer.Trigger())
	assert.False(t, reindexer.Triggered())
}
