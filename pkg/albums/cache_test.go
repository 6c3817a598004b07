package albums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumsync/pkg/photos"
)

func conditionAlbum(id int, name string, folderID int) photos.Album {
	return photos.Album{
		ID:   id,
		Name: name,
		Type: photos.AlbumTypeCondition,
		Condition: photos.Condition{
			UserID:       42,
			ItemType:     []int{},
			FolderFilter: []int{folderID},
		},
	}
}

type fakeAlbumLister struct {
	photos.Client

	albums []photos.Album
	err    error
}

func (f *fakeAlbumLister) ListAlbums() ([]photos.Album, error) {
	return f.albums, f.err
}

func TestCacheLoadBuildsViews(t *testing.T) {
	lister := &fakeAlbumLister{albums: []photos.Album{
		conditionAlbum(500, "Trips - Paris", 2),
		{ID: 600, Name: "Handmade", Type: "normal"},
	}}
	cache := NewCache(lister)
	require.NoError(t, cache.Load())

	assert.Len(t, cache.Albums(), 2)
	assert.True(t, cache.HasName("Trips - Paris"))
	assert.True(t, cache.HasName("Handmade"))

	album, ok := cache.ByFolder(2)
	require.True(t, ok)
	assert.Equal(t, 500, album.ID)

	// Manual albums carry no single backing folder.
	_, ok = cache.ByFolder(600)
	assert.False(t, ok)
}

func TestCacheLoadFailure(t *testing.T) {
	cache := NewCache(&fakeAlbumLister{err: assert.AnError})
	assert.Error(t, cache.Load())
}

func TestCacheFindPrefersNameOverFolder(t *testing.T) {
	lister := &fakeAlbumLister{albums: []photos.Album{
		conditionAlbum(500, "Trips - Paris", 2),
		conditionAlbum(501, "Renamed By Hand", 3),
	}}
	cache := NewCache(lister)
	require.NoError(t, cache.Load())

	album, ok := cache.Find("Trips - Paris", 2)
	require.True(t, ok)
	assert.Equal(t, 500, album.ID)

	// A renamed condition album still resolves through its folder id.
	album, ok = cache.Find("Trips - London", 3)
	require.True(t, ok)
	assert.Equal(t, 501, album.ID)

	_, ok = cache.Find("Trips - Rome", 0)
	assert.False(t, ok)
}

func TestCacheRegisterAndUnregister(t *testing.T) {
	cache := NewCache(&fakeAlbumLister{})
	require.NoError(t, cache.Load())

	created := conditionAlbum(700, "Trips - Berlin", 8)
	cache.Register(created)
	assert.True(t, cache.HasName("Trips - Berlin"))
	_, ok := cache.ByFolder(8)
	assert.True(t, ok)

	cache.Unregister(created)
	assert.False(t, cache.HasName("Trips - Berlin"))
	_, ok = cache.ByFolder(8)
	assert.False(t, ok)
	assert.Empty(t, cache.Albums())
}
