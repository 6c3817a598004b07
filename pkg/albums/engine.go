package albums

import (
	"fmt"
	"path"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"albumsync/pkg/config"
	"albumsync/pkg/errors"
	"albumsync/pkg/index"
	"albumsync/pkg/mount"
	"albumsync/pkg/photos"
	"albumsync/pkg/scan"
	"albumsync/pkg/vpath"
)

// MountManager is the slice of the bind-mount lifecycle the engine
// consumes. Satisfied by mount.Manager.
type MountManager interface {
	// EnsureReady converges one root's mount and reports whether a fresh
	// mount was applied.
	EnsureReady(label string) bool

	// Active reports whether anything is mounted at the root's target.
	Active(label string) bool

	// Cleanup detaches a root's mount and removes the mount point,
	// returning how many filesystem entries were removed.
	Cleanup(label string) int

	// Changed reports whether any mount was applied or detached this run.
	Changed() bool
}

var _ MountManager = (*mount.Manager)(nil)

// Engine drives one synchronization run. The local filesystem is the
// desired state; the remote album set converges toward it. Per-root and
// per-child failures are logged and contained so one bad root never stops
// the rest of the run.
type Engine struct {
	Client    photos.Client
	Config    config.Config
	Username  string
	Index     *index.Cache
	Waiter    *index.Waiter
	Reindexer *index.Reindexer
	Targeted  index.Targeted
	Scanner   *scan.Scanner
	Mounts    MountManager
	Albums    *Cache

	awaiting map[string]struct{}
}

// RunOptions selects how a synchronization run treats mounts.
type RunOptions struct {
	// ManageMounts lets the run apply missing bind mounts itself instead
	// of requiring an explicit mount invocation first.
	ManageMounts bool

	// AllowDeferOnMount postpones freshly mounted roots to a second pass
	// after a reindex, so albums are not created against an index that
	// has never seen the content.
	AllowDeferOnMount bool
}

// Run synchronizes every configured root. A second run against an
// unchanged filesystem performs no creates and no deletes; shares are
// re-issued since the remote end gives no way to read them back.
func (e *Engine) Run(opts RunOptions) error {
	if err := e.Albums.Load(); err != nil {
		return err
	}
	if err := e.Index.Load(); err != nil {
		return err
	}

	roots := e.Config.TeamRoots()
	if e.Config.Indexing.ForceReindexOnStart {
		log.Info("Forced reindex requested before processing roots")
		if e.Reindexer.Trigger() {
			e.waitAndReport(e.collectTargetPaths(roots), "initial reindex")
		}
	}

	for _, root := range roots {
		log.WithField("root", root).Info("Processing root")
		if err := e.processRoot(root, opts.ManageMounts, opts.AllowDeferOnMount); err != nil {
			log.WithError(err).WithField("root", root).Error("Root synchronization failed")
		}
	}

	if opts.ManageMounts {
		e.reprocessDeferred(roots, opts.ManageMounts)
	}

	for _, personal := range e.Config.Sharing.PersonalAlbumRoots {
		label := personalLabel(personal)
		log.WithField("root", label).Info("Processing personal root")
		share := e.Config.Sharing.ShareForPersonal(personal)
		if err := e.processPersonalRoot(personal, share, 0); err != nil {
			log.WithError(err).WithField("root", label).Error("Personal root synchronization failed")
		}
	}

	if e.Mounts != nil && e.Mounts.Changed() {
		log.Info("Mount changes detected; triggering a final reindex")
		if e.Reindexer.Trigger() {
			e.waitAndReport(e.collectTargetPaths(roots), "final reindex")
		}
	}
	return nil
}

// RunPersonal synchronizes only the personal roots, optionally narrowed to
// explicit roots and overridden sharing settings from the command line.
func (e *Engine) RunPersonal(explicit []config.PersonalRoot, overrides config.ShareOverrides, maxDepth int) error {
	roots := explicit
	if roots == nil {
		roots = e.Config.Sharing.PersonalAlbumRoots
	}
	if len(roots) == 0 {
		log.Info("No personal roots configured; nothing to process")
		return nil
	}

	if err := e.Albums.Load(); err != nil {
		return err
	}
	if err := e.Index.Load(); err != nil {
		return err
	}

	for _, personal := range roots {
		label := personalLabel(personal)
		log.WithField("root", label).Info("Processing personal root")
		share := e.Config.Sharing.ShareForPersonal(personal).Merge(overrides)
		if err := e.processPersonalRoot(personal, share, maxDepth); err != nil {
			log.WithError(err).WithField("root", label).Error("Personal root synchronization failed")
		}
	}
	return nil
}

// reprocessDeferred gives roots that got a fresh bind mount a second pass
// once a reindex has had a chance to pick them up.
func (e *Engine) reprocessDeferred(roots []string, manageMounts bool) {
	pending := e.pendingRoots(roots)
	if len(pending) == 0 {
		return
	}

	log.Info("Reindex required for freshly mounted roots; triggering before album synchronization")
	if e.Reindexer.Trigger() {
		e.waitAndReport(e.collectTargetPaths(pending), "post-mount reindex")
	}
	for _, root := range pending {
		delete(e.awaiting, root)
		log.WithField("root", root).Info("Re-processing root after reindex")
		if err := e.processRoot(root, manageMounts, false); err != nil {
			log.WithError(err).WithField("root", root).Error("Root synchronization failed")
		}
	}
}

func (e *Engine) processRoot(label string, manageMounts, allowDefer bool) error {
	targetPath := e.Config.RootTargetPath(label)
	absRoot := e.Config.MountTargetPath(e.Username, label)

	if e.Config.Mounts.BindMountsEnabled() {
		mounted := false
		if manageMounts {
			mounted = e.Mounts.EnsureReady(label)
			if mounted {
				e.markAwaiting(label)
			}
		} else if !e.Mounts.Active(label) {
			log.WithFields(log.Fields{"root": label, "path": absRoot}).
				Warn("Bind mount is missing; run the mount command first")
			return nil
		}
		if mounted {
			if allowDefer {
				log.WithField("root", label).
					Info("Mounted into personal space; deferring album sync until after reindex")
				return nil
			}
			log.WithField("root", label).Info("Freshly mounted; continuing after reindex")
		}
	} else {
		exists, _ := afero.Exists(e.Scanner.FS, absRoot)
		if !exists {
			log.WithFields(log.Fields{"root": label, "path": absRoot}).
				Warn("Personal path is missing; create it or enable bind mounts")
			return nil
		}
	}

	mediaPaths, status := e.Scanner.Scan(absRoot, targetPath)
	if status == scan.Empty {
		log.WithField("root", label).Info("Root holds no media; skipping indexing and album sync")
		return nil
	}

	teamRoot, found, err := e.findTeamRoot(label)
	if err != nil {
		return err
	}
	if !found {
		log.WithField("root", label).Warn("Unable to find team space root")
		return nil
	}
	teamChildren, err := e.Client.ListTeamFolders(teamRoot.ID)
	if err != nil {
		log.WithError(err).WithField("root", label).Warn("Unable to list team folders")
	}
	if len(teamChildren) == 0 {
		log.WithField("root", label).Warn("No accessible team folders under root")
	}

	managed, display := childSets(mediaPaths, targetPath)
	return e.syncChildren(rootSync{
		label:          label,
		share:          e.Config.Sharing.ShareFor(label),
		targetPath:     targetPath,
		absRoot:        absRoot,
		mediaPaths:     mediaPaths,
		managed:        managed,
		display:        display,
		teamChildNames: teamChildNames(label, teamChildren),
		allowDefer:     allowDefer,
	})
}

func (e *Engine) processPersonalRoot(personal config.PersonalRoot, share config.ShareConfig, maxDepth int) error {
	label := personalLabel(personal)
	absRoot, virtualRoot, err := e.resolvePersonalPath(personal.Path)
	if err != nil {
		return err
	}
	isDir, _ := afero.DirExists(e.Scanner.FS, absRoot)
	if !isDir {
		log.WithFields(log.Fields{"root": label, "path": absRoot}).
			Warn("Personal root path does not exist; skipping")
		return nil
	}

	scanner := *e.Scanner
	if maxDepth > 0 {
		scanner.MaxDepth = maxDepth
	} else if maxDepth < 0 {
		scanner.MaxDepth = 0
	}
	mediaPaths, status := scanner.Scan(absRoot, virtualRoot)
	if status == scan.Empty {
		log.WithField("root", label).Info("Personal root contains no folders with media; skipping album sync")
		return nil
	}

	managed, display := childSets(mediaPaths, virtualRoot)
	return e.syncChildren(rootSync{
		label:      label,
		share:      share,
		targetPath: virtualRoot,
		absRoot:    absRoot,
		mediaPaths: mediaPaths,
		managed:    managed,
		display:    display,
		allowDefer: false,
	})
}

// rootSync carries the resolved inputs of one root synchronization.
type rootSync struct {
	label      string
	share      config.ShareConfig
	targetPath string
	absRoot    string
	mediaPaths []string

	// managed holds the lookup keys of every child path the scan found
	// media in; pruning only ever touches albums inside this set.
	managed map[string]struct{}

	// display maps lowercased first-level child tokens to their display
	// casing, used to report folders the index has not picked up yet.
	display map[string]string

	// teamChildNames is the fallback reference set when the media scan
	// produced nothing to compare against.
	teamChildNames map[string]struct{}

	allowDefer bool
}

func (e *Engine) syncChildren(in rootSync) error {
	rootFolder, rootKnown := e.Index.LookupPath(in.targetPath)
	if !rootKnown {
		if err := e.Index.Load(); err != nil {
			return err
		}
		rootFolder, rootKnown = e.Index.LookupPath(in.targetPath)
	}

	var children []photos.Folder
	if rootKnown {
		children = e.Index.Children(rootFolder.ID)
	}
	usedPathScan := false
	if len(children) == 0 {
		children = e.Index.ChildrenOfPath(in.targetPath)
		if len(children) != 0 {
			usedPathScan = true
		} else {
			if !rootKnown {
				folder, found, err := e.Waiter.WaitForFolder(in.targetPath)
				if err != nil {
					return err
				}
				if found {
					children = e.Index.Children(folder.ID)
				}
			}
			if len(children) == 0 {
				children = e.Index.ChildrenOfPath(in.targetPath)
				if len(children) == 0 {
					log.WithFields(log.Fields{"root": in.label, "path": in.targetPath}).
						Warn("Unable to find indexed subfolders; skipping root")
					return nil
				}
				usedPathScan = true
			}
		}
	}
	if usedPathScan {
		log.WithFields(log.Fields{"root": in.label, "path": in.targetPath}).
			Info("Root folder missing from the index; using path-prefix scan for its children")
	}

	// The media scan knows which folders should become albums; when the
	// index has entries for them they take precedence over whatever
	// parent-id traversal produced.
	if len(in.mediaPaths) != 0 {
		if preferred, _ := e.Index.ResolvePaths(in.mediaPaths); len(preferred) != 0 {
			children = preferred
		}
	}

	e.reportUnindexed(in, children)

	activeIDs := map[int]struct{}{}
	expectedNames := map[string]struct{}{}
	for _, folder := range children {
		if folder.ID != 0 {
			activeIDs[folder.ID] = struct{}{}
		}
		childLabel := folderLabel(folder.Name)
		albumName := Name(in.label, childLabel)
		expectedNames[albumName] = struct{}{}

		if existing, found := e.Albums.Find(albumName, folder.ID); found {
			if existing.Name != albumName {
				log.WithFields(log.Fields{
					"folder": childLabel,
					"album":  existing.Name,
				}).Info("Folder already managed under a different album name; keeping it")
			}
			e.share(existing.ID, existing.Name, in.share)
			continue
		}

		album, created := e.createAlbum(in.label, folder)
		if !created {
			continue
		}
		e.share(album.ID, album.Name, in.share)
	}

	e.prune(in, activeIDs, expectedNames)
	return nil
}

// reportUnindexed compares what the filesystem holds against what the
// index returned and flags the folders the indexer has not seen yet.
func (e *Engine) reportUnindexed(in rootSync, children []photos.Folder) {
	indexedRelative := map[string]struct{}{}
	indexedLabels := map[string]struct{}{}
	for _, folder := range children {
		if label := folderLabel(folder.Name); label != "" {
			indexedLabels[strings.ToLower(label)] = struct{}{}
		}
		if token, ok := vpath.RelativeChild(folder.Name, in.targetPath); ok {
			indexedRelative[strings.ToLower(token)] = struct{}{}
		}
	}

	var missing []string
	if len(in.display) != 0 {
		for key, display := range in.display {
			if _, ok := indexedRelative[key]; !ok {
				missing = append(missing, display)
			}
		}
	} else {
		for name := range in.teamChildNames {
			if _, ok := indexedLabels[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.Slice(missing, func(i, j int) bool {
		return strings.ToLower(missing[i]) < strings.ToLower(missing[j])
	})

	log.WithFields(log.Fields{
		"root":    in.label,
		"count":   len(missing),
		"folders": previewList(missing, 5),
	}).Warn("Folders are not indexed yet")
	if in.allowDefer {
		e.markAwaiting(in.label)
	} else {
		log.Warn("Reindex already attempted; verify the service's indexing status manually if folders stay missing")
	}
	if exists, _ := afero.Exists(e.Scanner.FS, in.absRoot); exists {
		e.Targeted.Request(in.absRoot)
	}
}

func (e *Engine) createAlbum(rootLabel string, folder photos.Folder) (photos.Album, bool) {
	childLabel := folderLabel(folder.Name)
	if config.IsReservedName(childLabel) {
		return photos.Album{}, false
	}
	albumName := Name(rootLabel, childLabel)
	if e.Albums.HasName(albumName) {
		log.WithField("album", albumName).Warn("Album already exists; skipping")
		return photos.Album{}, false
	}
	if folder.ID == 0 {
		log.WithField("folder", childLabel).Warn("Could not resolve folder id; skipping")
		return photos.Album{}, false
	}

	owner := folder.OwnerUserID
	if owner == 0 {
		owner = e.Client.UserID()
	}
	condition := photos.Condition{
		UserID:       owner,
		ItemType:     []int{},
		FolderFilter: []int{folder.ID},
	}

	log.WithFields(log.Fields{"album": albumName, "folder": folder.ID}).Info("Creating album")
	created, err := e.Client.CreateAlbum(albumName, condition)
	if err != nil {
		log.WithError(err).WithField("album", albumName).Error("Failed to create album")
		return photos.Album{}, false
	}

	album := photos.Album{
		ID:        created.ID,
		Name:      albumName,
		Type:      photos.AlbumTypeCondition,
		Condition: condition,
	}
	e.Albums.Register(album)
	log.WithFields(log.Fields{"album": albumName, "id": album.ID}).Info("Created album")
	return album, true
}

func (e *Engine) share(albumID int, albumName string, share config.ShareConfig) {
	err := e.Client.ShareAlbum(albumID, share.With, share.Permission, share.Roles)
	if err != nil {
		log.WithError(err).WithField("album", albumName).Error("Failed to share album")
		return
	}
	if len(share.With) != 0 {
		log.WithFields(log.Fields{
			"album": albumName,
			"with":  strings.Join(share.With, ", "),
		}).Debug("Share configuration applied")
	}
}

// prune removes condition albums whose single backing folder disappeared
// from this root. Albums are only ever deleted when their folder provably
// belongs to the managed child set; anything ambiguous is skipped.
func (e *Engine) prune(in rootSync, activeIDs map[int]struct{}, expectedNames map[string]struct{}) {
	var orphans []photos.Album
	for _, album := range e.Albums.Albums() {
		folderID, ok := album.SingleFolder()
		if !ok {
			continue
		}
		if _, active := activeIDs[folderID]; active {
			continue
		}
		folder, found := e.Index.Lookup(folderID)
		if !found {
			if _, expected := expectedNames[album.Name]; expected {
				continue
			}
			log.WithFields(log.Fields{
				"album":  album.Name,
				"folder": folderID,
			}).Info("Skipping album during pruning; its folder is missing from the index")
			continue
		}
		// Scope guard: only folders that provably belong to this root may
		// be pruned, either as a direct child of the root's path or as one
		// of the nested paths this run's scan manages.
		_, direct := vpath.IsDirectChild(folder.Name, in.targetPath)
		_, inManaged := in.managed[vpath.Key(folder.Name)]
		if !direct && !inManaged {
			continue
		}
		orphans = append(orphans, album)
	}

	for _, album := range orphans {
		if err := e.Client.DeleteAlbum(album.ID); err != nil {
			log.WithError(err).WithField("album", album.Name).Error("Failed to delete album")
			continue
		}
		log.WithFields(log.Fields{"album": album.Name, "id": album.ID}).Info("Removed orphan album")
		e.Albums.Unregister(album)
	}
}

// collectTargetPaths gathers the virtual paths a reindex wait should watch
// for the given roots. Roots whose scan produced nothing fall back to the
// root path itself, except empty and missing roots, which never resolve.
func (e *Engine) collectTargetPaths(roots []string) []string {
	var targets []string
	for _, root := range roots {
		absRoot := e.Config.MountTargetPath(e.Username, root)
		paths, status := e.Scanner.Scan(absRoot, e.Config.RootTargetPath(root))
		if len(paths) != 0 {
			targets = append(targets, paths...)
			continue
		}
		if status == scan.Empty || status == scan.Missing {
			continue
		}
		targets = append(targets, e.Config.RootTargetPath(root))
	}
	return targets
}

func (e *Engine) waitAndReport(paths []string, label string) {
	pending, err := e.Waiter.WaitForPaths(paths, label)
	if err != nil {
		log.WithError(err).WithField("scope", label).Warn("Index polling failed")
		return
	}
	if len(pending) != 0 {
		log.WithFields(log.Fields{
			"scope":   label,
			"pending": previewList(pending, 10),
		}).Warn("Index is still missing folder entries")
	}
}

func (e *Engine) findTeamRoot(label string) (photos.Folder, bool, error) {
	roots, err := e.Client.ListTeamFolders(0)
	if err != nil {
		return photos.Folder{}, false, errors.WithContext(err, "list team roots")
	}
	for _, folder := range roots {
		if vpath.NormalizeLabel(folder.Name) == vpath.NormalizeLabel(label) {
			return folder, true, nil
		}
	}
	return photos.Folder{}, false, nil
}

// resolvePersonalPath turns a configured personal path, absolute or
// relative, into its on-disk location and the virtual path the index sees
// it at. Paths escaping the personal Photos directory are rejected.
func (e *Engine) resolvePersonalPath(raw string) (string, string, error) {
	personalRoot := e.Config.PersonalPhotosRoot(e.Username)
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", "", errors.NewFriendlyError("A personal root path is required.")
	}
	if !path.IsAbs(candidate) {
		candidate = path.Join(personalRoot, candidate)
	}
	candidate = path.Clean(candidate)

	if candidate != personalRoot && !strings.HasPrefix(candidate, personalRoot+"/") {
		return "", "", errors.NewFriendlyError(
			"Personal path %q must reside under %q.", candidate, personalRoot)
	}
	relative := strings.Trim(strings.TrimPrefix(candidate, personalRoot), "/")
	return candidate, vpath.Normalize(relative), nil
}

func (e *Engine) markAwaiting(label string) {
	if e.awaiting == nil {
		e.awaiting = map[string]struct{}{}
	}
	e.awaiting[label] = struct{}{}
}

// pendingRoots filters the deferred set down to roots still managed by the
// configuration, in processing order.
func (e *Engine) pendingRoots(roots []string) []string {
	var pending []string
	for _, root := range roots {
		if _, ok := e.awaiting[root]; ok {
			pending = append(pending, root)
		}
	}
	return pending
}

// childSets derives the pruning key set and the relative display map from
// the scanned media paths.
func childSets(mediaPaths []string, targetPath string) (map[string]struct{}, map[string]string) {
	managed := map[string]struct{}{}
	display := map[string]string{}
	for _, childPath := range mediaPaths {
		if childPath == "" {
			continue
		}
		managed[vpath.Key(childPath)] = struct{}{}
		token, ok := vpath.RelativeChild(childPath, targetPath)
		if !ok {
			continue
		}
		key := strings.ToLower(token)
		if _, exists := display[key]; !exists {
			display[key] = token
		}
	}
	return managed, display
}

// teamChildNames collects the lowercased first-level child names below a
// team root, used as the indexing reference when no media scan is
// available.
func teamChildNames(rootLabel string, teamChildren []photos.Folder) map[string]struct{} {
	names := map[string]struct{}{}
	normalizedRoot := vpath.NormalizeLabel(rootLabel)
	for _, folder := range teamChildren {
		cleaned := strings.Trim(strings.TrimSpace(folder.Name), "/")
		if cleaned == "" {
			continue
		}
		parts := strings.SplitN(cleaned, "/", 2)
		if vpath.NormalizeLabel(parts[0]) != normalizedRoot || len(parts) < 2 {
			continue
		}
		child := strings.TrimSpace(strings.SplitN(parts[1], "/", 2)[0])
		if child != "" {
			names[strings.ToLower(child)] = struct{}{}
		}
	}
	return names
}

func personalLabel(personal config.PersonalRoot) string {
	if label := strings.TrimSpace(personal.Label); label != "" {
		return label
	}
	return vpath.Base(personal.Path)
}

func previewList(values []string, shown int) string {
	if len(values) <= shown {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(values[:shown], ", "), len(values)-shown)
}
