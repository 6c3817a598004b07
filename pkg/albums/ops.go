package albums

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"albumsync/pkg/config"
	"albumsync/pkg/errors"
)

// EnsureMounts converges the bind mounts for every managed team root and
// returns the roots whose mount changed. With waitForIndex set, a reindex
// is triggered after mount changes and the run blocks until the roots'
// folders appear in the index or the wait budget runs out.
func (e *Engine) EnsureMounts(waitForIndex bool) []string {
	var changed []string
	for _, root := range e.Config.TeamRoots() {
		if e.Mounts.EnsureReady(root) {
			changed = append(changed, root)
		}
	}
	if len(changed) != 0 {
		log.WithField("roots", strings.Join(changed, ", ")).Info("Ensured bind mounts")
	} else {
		log.Info("All managed bind mounts are already active; nothing to do")
	}

	if !waitForIndex {
		return changed
	}
	label := "pre-sync mount"
	if len(changed) != 0 {
		log.Info("Triggering reindex after mount changes")
		if e.Reindexer.Trigger() {
			label = "pre-sync mount (post-reindex)"
		}
	}
	e.waitAndReport(e.collectTargetPaths(e.Config.TeamRoots()), label)
	e.awaiting = nil
	return changed
}

// PrepareIndex gives the remote index a chance to catch up before album
// creation runs without mount management.
func (e *Engine) PrepareIndex() {
	label := "album creation prep (passive wait)"
	if e.Reindexer.Trigger() {
		label = "album creation prep (after reindex)"
	}
	e.waitAndReport(e.collectTargetPaths(e.Config.TeamRoots()), label)
}

// UnmountAll detaches the bind mounts of every managed team root without
// touching any album. Returns the number of cleaned mount points.
func (e *Engine) UnmountAll() int {
	removed := 0
	for _, root := range e.Config.TeamRoots() {
		removed += e.Mounts.Cleanup(root)
	}
	if removed != 0 {
		log.WithField("mounts", removed).Info("Unmounted managed mount points")
	} else {
		log.Info("No managed mount points required cleanup")
	}
	return removed
}

// PersonalRootFromPath builds an ad-hoc personal root for a path given on
// the command line. The label defaults to the path below the personal
// Photos directory with slashes turned into separators.
func (e *Engine) PersonalRootFromPath(rawPath, label string) (config.PersonalRoot, error) {
	absRoot, virtualRoot, err := e.resolvePersonalPath(rawPath)
	if err != nil {
		return config.PersonalRoot{}, err
	}
	if virtualRoot == "/" {
		return config.PersonalRoot{}, errors.NewFriendlyError(
			"The personal path must point to a subfolder inside the personal Photos directory.")
	}
	if strings.TrimSpace(label) == "" {
		label = strings.ReplaceAll(strings.Trim(virtualRoot, "/"), "/", " - ")
	}
	return config.PersonalRoot{Path: absRoot, Label: label}, nil
}
