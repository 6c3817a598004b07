package albums

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"albumsync/pkg/config"
	"albumsync/pkg/photos"
	"albumsync/pkg/scan"
	"albumsync/pkg/vpath"
)

// DeleteManaged removes every condition album whose name carries a managed
// team root's prefix. Folders and media are never touched.
func (e *Engine) DeleteManaged() (int, error) {
	if err := e.Albums.Load(); err != nil {
		return 0, err
	}
	deleted := 0
	for _, root := range e.Config.TeamRoots() {
		deleted += e.deleteByPrefix(root)
	}
	log.WithField("deleted", deleted).Info("Deleted managed team space albums; no folders or media were removed")
	return deleted, nil
}

// DeleteByName removes every album with the given exact name.
func (e *Engine) DeleteByName(name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		log.Error("Album name is required")
		return 0, nil
	}
	if err := e.Albums.Load(); err != nil {
		return 0, err
	}

	var matches []photos.Album
	for _, album := range e.Albums.Albums() {
		if album.Name == trimmed {
			matches = append(matches, album)
		}
	}
	if len(matches) == 0 {
		log.WithField("album", trimmed).Info("Album not found; nothing to delete")
		return 0, nil
	}

	deleted := 0
	for _, album := range matches {
		if err := e.Client.DeleteAlbum(album.ID); err != nil {
			log.WithError(err).WithField("album", album.Name).Error("Failed to delete album")
			continue
		}
		log.WithFields(log.Fields{"album": album.Name, "id": album.ID}).Info("Removed album")
		e.Albums.Unregister(album)
		deleted++
	}
	return deleted, nil
}

// DeletePersonal removes the albums managed under the configured personal
// roots, optionally narrowed to specific labels. The deletion is scoped to
// the folders the media scan finds, so albums over foreign folders survive.
func (e *Engine) DeletePersonal(labels []string, explicit []config.PersonalRoot) (int, error) {
	roots := explicit
	if roots == nil {
		roots = e.Config.Sharing.PersonalAlbumRoots
	}
	if len(labels) != 0 {
		requested := map[string]struct{}{}
		for _, label := range labels {
			requested[label] = struct{}{}
		}
		var filtered []config.PersonalRoot
		for _, root := range roots {
			if _, ok := requested[personalLabel(root)]; ok {
				filtered = append(filtered, root)
			}
		}
		roots = filtered
	}
	if len(roots) == 0 {
		log.Info("No personal roots configured; nothing to delete")
		return 0, nil
	}

	if err := e.Albums.Load(); err != nil {
		return 0, err
	}
	if err := e.Index.Load(); err != nil {
		return 0, err
	}

	deleted := 0
	for _, root := range roots {
		deleted += e.deletePersonalRoot(root)
	}
	log.WithField("deleted", deleted).Info("Deleted personal albums; no folders or media were removed")
	return deleted, nil
}

func (e *Engine) deletePersonalRoot(personal config.PersonalRoot) int {
	label := personalLabel(personal)
	absRoot, virtualRoot, err := e.resolvePersonalPath(personal.Path)
	if err != nil {
		log.WithError(err).WithField("root", label).Error("Invalid personal root")
		return 0
	}

	mediaPaths, status := e.Scanner.Scan(absRoot, virtualRoot)
	if status == scan.Missing || status == scan.Error {
		return 0
	}

	allowedPaths := map[string]struct{}{}
	for _, childPath := range mediaPaths {
		allowedPaths[vpath.Key(childPath)] = struct{}{}
	}
	allowedIDs := map[int]struct{}{}
	resolved, _ := e.Index.ResolvePaths(mediaPaths)
	for _, folder := range resolved {
		allowedIDs[folder.ID] = struct{}{}
	}
	return e.deleteForPaths(allowedPaths, allowedIDs)
}

// deleteForPaths removes the condition albums whose single backing folder
// is inside the allowed path or id set.
func (e *Engine) deleteForPaths(allowedPaths map[string]struct{}, allowedIDs map[int]struct{}) int {
	deleted := 0
	for _, album := range append([]photos.Album{}, e.Albums.Albums()...) {
		folderID, ok := album.SingleFolder()
		if !ok {
			continue
		}
		if _, allowed := allowedIDs[folderID]; !allowed {
			folder, found := e.Index.Lookup(folderID)
			if !found {
				continue
			}
			if _, allowed := allowedPaths[vpath.Key(folder.Name)]; !allowed {
				continue
			}
		}
		if err := e.Client.DeleteAlbum(album.ID); err != nil {
			log.WithError(err).WithField("album", album.Name).Error("Failed to delete album")
			continue
		}
		log.WithFields(log.Fields{"album": album.Name, "id": album.ID}).Info("Removed album")
		e.Albums.Unregister(album)
		deleted++
	}
	return deleted
}

func (e *Engine) deleteByPrefix(rootLabel string) int {
	prefix := strings.TrimSpace(rootLabel) + " - "
	deleted := 0
	for _, album := range append([]photos.Album{}, e.Albums.Albums()...) {
		if album.Type != photos.AlbumTypeCondition || !strings.HasPrefix(album.Name, prefix) {
			continue
		}
		if err := e.Client.DeleteAlbum(album.ID); err != nil {
			log.WithError(err).WithField("album", album.Name).Error("Failed to delete album")
			continue
		}
		log.WithFields(log.Fields{"album": album.Name, "id": album.ID}).Info("Removed album")
		e.Albums.Unregister(album)
		deleted++
	}
	return deleted
}

// Listing pairs an album with the virtual paths of the folders backing it.
type Listing struct {
	Album   photos.Album
	Folders []string
}

// List returns every remote album, optionally narrowed to albums whose
// condition references a folder at or below scopePath (a personal path,
// absolute or relative).
func (e *Engine) List(scopePath string) ([]Listing, error) {
	if err := e.Albums.Load(); err != nil {
		return nil, err
	}
	if err := e.Index.Load(); err != nil {
		return nil, err
	}

	var allowedIDs map[int]struct{}
	if strings.TrimSpace(scopePath) != "" {
		_, virtualScope, err := e.resolvePersonalPath(scopePath)
		if err != nil {
			return nil, err
		}
		allowedIDs = map[int]struct{}{}
		scopeKey := vpath.Key(virtualScope)
		prefix := strings.TrimSuffix(scopeKey, "/") + "/"
		if folder, ok := e.Index.LookupPath(virtualScope); ok {
			allowedIDs[folder.ID] = struct{}{}
		}
		for _, album := range e.Albums.Albums() {
			for _, folderID := range album.Condition.FolderFilter {
				if folder, ok := e.Index.Lookup(folderID); ok {
					if key := vpath.Key(folder.Name); key == scopeKey || strings.HasPrefix(key, prefix) {
						allowedIDs[folderID] = struct{}{}
					}
				}
			}
		}
		if len(allowedIDs) == 0 {
			log.WithField("path", virtualScope).Info("No indexed folders under path; nothing to list")
			return nil, nil
		}
	}

	var listings []Listing
	for _, album := range e.Albums.Albums() {
		folderIDs := album.Condition.FolderFilter
		if allowedIDs != nil {
			matched := false
			for _, folderID := range folderIDs {
				if _, ok := allowedIDs[folderID]; ok {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		var paths []string
		for _, folderID := range folderIDs {
			if folder, ok := e.Index.Lookup(folderID); ok {
				paths = append(paths, vpath.Normalize(folder.Name))
			}
		}
		sort.Strings(paths)
		listings = append(listings, Listing{Album: album, Folders: paths})
	}
	return listings, nil
}

// UnmapAll removes the managed albums and the bind mounts for every team
// root. The shared content itself is untouched.
func (e *Engine) UnmapAll() (albumsDeleted, mountsCleaned int, err error) {
	if err := e.Albums.Load(); err != nil {
		return 0, 0, err
	}
	for _, root := range e.Config.TeamRoots() {
		albumsDeleted += e.deleteByPrefix(root)
		mountsCleaned += e.Mounts.Cleanup(root)
	}
	log.WithFields(log.Fields{
		"albums": albumsDeleted,
		"mounts": mountsCleaned,
	}).Info("Removed managed albums and cleaned mounts")
	return albumsDeleted, mountsCleaned, nil
}
