// Package index caches the remote folder index and bounds the waits on the
// service's asynchronous indexing jobs.
package index

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"albumsync/pkg/errors"
	"albumsync/pkg/photos"
	"albumsync/pkg/vpath"
)

// Cache is a point-in-time snapshot of the remote folder index. The remote
// index changes out-of-band the instant the filesystem does, and there is no
// push notification, so staleness is resolved by calling Load again.
type Cache struct {
	client photos.Client

	byID     map[int]photos.Folder
	byPath   map[string]photos.Folder
	children map[int][]photos.Folder
	loaded   bool
}

// NewCache returns an empty cache over the given client. Call Load before
// the first lookup.
func NewCache(client photos.Client) *Cache {
	return &Cache{client: client}
}

// Load does a full refetch of the folder index and rebuilds the lookup
// views. On failure the previous views are left untouched and the caller
// must not assume any folder is missing.
func (c *Cache) Load() error {
	folders, err := c.client.ListFolders()
	if err != nil {
		return errors.RemoteIndexUnavailable{Cause: err}
	}

	byID := map[int]photos.Folder{}
	byPath := map[string]photos.Folder{}
	children := map[int][]photos.Folder{}
	for _, folder := range folders {
		byID[folder.ID] = folder
		byPath[vpath.Key(folder.Name)] = folder
		if folder.Parent != 0 {
			children[folder.Parent] = append(children[folder.Parent], folder)
		}
	}
	for _, siblings := range children {
		sortFolders(siblings)
	}

	c.byID = byID
	c.byPath = byPath
	c.children = children
	c.loaded = true
	log.WithField("folders", len(byID)).Debug("Loaded remote folder index")
	return nil
}

// Loaded reports whether a Load has succeeded at least once.
func (c *Cache) Loaded() bool {
	return c.loaded
}

// Len returns the number of indexed folders.
func (c *Cache) Len() int {
	return len(c.byID)
}

// Lookup returns the folder with the given id.
func (c *Cache) Lookup(id int) (photos.Folder, bool) {
	folder, ok := c.byID[id]
	return folder, ok
}

// LookupPath returns the folder indexed at the given virtual path. The
// lookup is case-insensitive.
func (c *Cache) LookupPath(path string) (photos.Folder, bool) {
	folder, ok := c.byPath[vpath.Key(path)]
	return folder, ok
}

// Children returns the folders whose parent is parentID, ordered by path.
func (c *Cache) Children(parentID int) []photos.Folder {
	return c.children[parentID]
}

// ChildrenOfPath scans the index for direct children of the given virtual
// path. It covers folders whose parent id is absent from the index (seen
// when the index job has recorded a folder but not yet linked its parent).
func (c *Cache) ChildrenOfPath(parent string) []photos.Folder {
	var matched []photos.Folder
	for _, folder := range c.byPath {
		if _, ok := vpath.IsDirectChild(folder.Name, parent); ok {
			matched = append(matched, folder)
		}
	}
	sortFolders(matched)
	return matched
}

// ResolvePaths splits the given virtual paths into the folders present in
// the index and the paths that have no entry yet.
func (c *Cache) ResolvePaths(paths []string) (resolved []photos.Folder, missing []string) {
	for _, path := range paths {
		if folder, ok := c.LookupPath(path); ok {
			resolved = append(resolved, folder)
		} else {
			missing = append(missing, vpath.Normalize(path))
		}
	}
	return resolved, missing
}

func sortFolders(folders []photos.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})
}
