package index

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"albumsync/pkg/photos"
	"albumsync/pkg/vpath"
)

// Waiter polls the folder index until a set of paths appears or the attempt
// budget runs out. The indexing job on the other side gives no completion
// signal, so a bounded poll is the only way to observe it.
type Waiter struct {
	Cache    *Cache
	Attempts int
	Delay    time.Duration
	Clock    clockwork.Clock
}

// WaitForPaths polls until every path has an index entry, reloading the
// cache before each check after the first. It returns the subset still
// missing when the budget is exhausted; absence is an expected state, not
// an error. An empty input returns immediately without touching the remote
// service. A cache reload failure aborts the wait.
func (w *Waiter) WaitForPaths(paths []string, label string) ([]string, error) {
	pending := map[string]struct{}{}
	for _, path := range paths {
		pending[vpath.Normalize(path)] = struct{}{}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	for attempt := 1; attempt <= w.Attempts; attempt++ {
		if err := w.Cache.Load(); err != nil {
			return sortedKeys(pending), err
		}
		for path := range pending {
			if _, ok := w.Cache.LookupPath(path); ok {
				delete(pending, path)
			}
		}
		if len(pending) == 0 {
			return nil, nil
		}

		if attempt < w.Attempts {
			log.WithFields(log.Fields{
				"scope":   label,
				"pending": preview(sortedKeys(pending)),
				"attempt": fmt.Sprintf("%d/%d", attempt, w.Attempts),
			}).Info("Waiting for folders to be indexed")
			w.Clock.Sleep(w.Delay)
		}
	}
	return sortedKeys(pending), nil
}

// WaitForFolder polls until a single path has an index entry and returns
// it. ok is false when the budget runs out without the entry appearing.
func (w *Waiter) WaitForFolder(path string) (photos.Folder, bool, error) {
	missing, err := w.WaitForPaths([]string{path}, vpath.Base(path))
	if err != nil {
		return photos.Folder{}, false, err
	}
	if len(missing) != 0 {
		return photos.Folder{}, false, nil
	}
	folder, ok := w.Cache.LookupPath(path)
	return folder, ok, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sortStrings(keys)
	return keys
}

func sortStrings(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})
}

// preview shortens a path list for log lines.
func preview(paths []string) string {
	const shown = 3
	if len(paths) <= shown {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(paths[:shown], ", "), len(paths)-shown)
}
