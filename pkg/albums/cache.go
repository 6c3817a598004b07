// Package albums reconciles the remote album set with the folders that
// actually hold media. It owns album creation, sharing, pruning, and the
// maintenance operations exposed by the CLI.
package albums

import (
	log "github.com/sirupsen/logrus"

	"albumsync/pkg/errors"
	"albumsync/pkg/photos"
)

// Cache is the run-scoped view of the remote album set. It is fetched once
// per run and kept coherent by registering and unregistering albums after
// every remote create and delete; there is no mid-run refetch.
type Cache struct {
	client photos.Client

	albums   []photos.Album
	byName   map[string]photos.Album
	byFolder map[int]photos.Album
}

// NewCache returns an empty album cache. Call Load before using it.
func NewCache(client photos.Client) *Cache {
	return &Cache{
		client:   client,
		byName:   map[string]photos.Album{},
		byFolder: map[int]photos.Album{},
	}
}

// Load fetches the remote album set and rebuilds the lookup views.
func (c *Cache) Load() error {
	albums, err := c.client.ListAlbums()
	if err != nil {
		return errors.WithContext(err, "load album cache")
	}

	c.albums = albums
	c.byName = map[string]photos.Album{}
	c.byFolder = map[int]photos.Album{}
	for _, album := range albums {
		c.index(album)
	}
	log.WithField("albums", len(albums)).Info("Loaded existing albums")
	return nil
}

// Albums returns the cached album list.
func (c *Cache) Albums() []photos.Album {
	return c.albums
}

// ByName returns the cached album with the given name.
func (c *Cache) ByName(name string) (photos.Album, bool) {
	album, ok := c.byName[name]
	return album, ok
}

// ByFolder returns the cached condition album backed solely by folderID.
func (c *Cache) ByFolder(folderID int) (photos.Album, bool) {
	album, ok := c.byFolder[folderID]
	return album, ok
}

// HasName reports whether an album with the given name is cached.
func (c *Cache) HasName(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Find locates the album managing a folder, preferring a name match over a
// folder-id match so manually renamed conditions still resolve.
func (c *Cache) Find(name string, folderID int) (photos.Album, bool) {
	if album, ok := c.byName[name]; ok {
		return album, true
	}
	if folderID != 0 {
		if album, ok := c.byFolder[folderID]; ok {
			return album, true
		}
	}
	return photos.Album{}, false
}

// Register adds a freshly created album to the cache.
func (c *Cache) Register(album photos.Album) {
	c.albums = append(c.albums, album)
	c.index(album)
}

// Unregister drops a deleted album from the cache.
func (c *Cache) Unregister(album photos.Album) {
	if album.Name != "" {
		delete(c.byName, album.Name)
	}
	if folderID, ok := album.SingleFolder(); ok {
		delete(c.byFolder, folderID)
	}
	kept := c.albums[:0]
	for _, cached := range c.albums {
		if cached.ID != album.ID {
			kept = append(kept, cached)
		}
	}
	c.albums = kept
}

func (c *Cache) index(album photos.Album) {
	if album.Name != "" {
		c.byName[album.Name] = album
	}
	if folderID, ok := album.SingleFolder(); ok {
		c.byFolder[folderID] = album
	}
}
