// Package scan discovers which folders under a root actually contain media.
// The scan runs against the local filesystem view of the library, which is
// the source of truth; the remote index only ever lags behind it.
package scan

import (
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"albumsync/pkg/config"
	"albumsync/pkg/vpath"
)

// Status classifies the outcome of a root scan. Callers branch on it:
// Empty and Missing roots are skipped without waiting on the remote index,
// Error roots fall back to the root path itself.
type Status int

const (
	Ok Status = iota
	Empty
	Missing
	Error
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case Empty:
		return "empty"
	case Missing:
		return "missing"
	case Error:
		return "error"
	}
	return "unknown"
}

// Scanner walks a root directory for child folders holding media files.
type Scanner struct {
	// FS is the filesystem under the roots. Swapped for a memory fs in
	// tests.
	FS afero.Fs

	// MaxDepth bounds how many directory levels below a child are
	// searched. Zero or negative means unlimited.
	MaxDepth int
}

// Scan lists the virtual paths of the folders under absRoot that contain
// media, mapped under virtualRoot. A child with media files directly inside
// it is emitted as-is; a child whose media sits only in subfolders is
// replaced by those subfolders. Results are deduplicated and sorted
// case-insensitively.
func (s *Scanner) Scan(absRoot, virtualRoot string) ([]string, Status) {
	entries, err := afero.ReadDir(s.FS, absRoot)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, Missing
		case os.IsPermission(err):
			log.WithField("path", absRoot).Warn("Permission denied while scanning")
			return nil, Error
		default:
			log.WithError(err).WithField("path", absRoot).Warn("Unable to scan root")
			return nil, Error
		}
	}

	normalizedRoot := vpath.Normalize(virtualRoot)
	var paths []string
	foundNested := false
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name())
		if !entry.IsDir() || !config.IsValidFolderName(name) {
			continue
		}
		childAbs := join(absRoot, entry.Name())
		if !s.containsMedia(childAbs, s.MaxDepth) {
			continue
		}
		childVirtual := vpath.Join(normalizedRoot, name)
		if s.hasDirectMedia(childAbs) {
			paths = append(paths, childVirtual)
			continue
		}
		foundNested = true
		paths = append(paths, s.nestedMediaChildren(childAbs, childVirtual, 1)...)
	}

	paths = dedupeSorted(paths)
	if len(paths) == 0 {
		if foundNested {
			log.WithField("path", absRoot).Info(
				"Media found only beyond the configured scan depth; treating root as empty")
		}
		return nil, Empty
	}
	return paths, Ok
}

// containsMedia reports whether any media file exists under path within
// maxDepth levels. maxDepth <= 0 means unlimited.
func (s *Scanner) containsMedia(path string, maxDepth int) bool {
	type frame struct {
		path  string
		depth int
	}
	pending := []frame{{path: path}}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		entries, err := afero.ReadDir(s.FS, current.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && config.IsMediaFile(entry.Name()) {
				return true
			}
			if entry.IsDir() && (maxDepth <= 0 || current.depth < maxDepth) {
				pending = append(pending, frame{
					path:  join(current.path, entry.Name()),
					depth: current.depth + 1,
				})
			}
		}
	}
	return false
}

func (s *Scanner) hasDirectMedia(path string) bool {
	entries, err := afero.ReadDir(s.FS, path)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && config.IsMediaFile(entry.Name()) {
			return true
		}
	}
	return false
}

// nestedMediaChildren descends into a child that has media only in
// subfolders and returns the deepest folders that hold the media directly.
func (s *Scanner) nestedMediaChildren(absPath, virtualPath string, depth int) []string {
	if s.MaxDepth > 0 && depth > s.MaxDepth {
		return nil
	}
	entries, err := afero.ReadDir(s.FS, absPath)
	if err != nil {
		return nil
	}

	var collected []string
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name())
		if !entry.IsDir() || !config.IsValidFolderName(name) {
			continue
		}
		childAbs := join(absPath, entry.Name())
		childVirtual := vpath.Join(virtualPath, name)
		if s.hasDirectMedia(childAbs) {
			collected = append(collected, childVirtual)
			continue
		}
		remaining := 0
		if s.MaxDepth > 0 {
			remaining = s.MaxDepth - depth
			if remaining <= 0 {
				continue
			}
		}
		if !s.containsMedia(childAbs, remaining) {
			continue
		}
		collected = append(collected, s.nestedMediaChildren(childAbs, childVirtual, depth+1)...)
	}
	return collected
}

func join(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}

func dedupeSorted(paths []string) []string {
	seen := map[string]struct{}{}
	var unique []string
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		unique = append(unique, path)
	}
	sort.Slice(unique, func(i, j int) bool {
		return strings.ToLower(unique[i]) < strings.ToLower(unique[j])
	})
	return unique
}
