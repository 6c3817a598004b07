package config

import (
	"os"
	"path"
	"sort"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"albumsync/pkg/vpath"
)

const (
	// ConfigPathEnvKey overrides the default location of the sync config.
	ConfigPathEnvKey = "ALBUMSYNC_CONFIG"

	// DefaultConfigPath is the default path to the sync config.
	DefaultConfigPath = "~/.albumsync.yaml"

	// SupportedConfigVersion is the config schema version understood by
	// this binary. Files without a version default to it.
	SupportedConfigVersion = "v1alpha1"
)

// Config is the parsed sync configuration file.
type Config struct {
	Version  string         `json:"version,omitempty"`
	Paths    PathConfig     `json:"paths,omitempty"`
	Mounts   MountConfig    `json:"mounts,omitempty"`
	Media    MediaConfig    `json:"media,omitempty"`
	Indexing IndexingConfig `json:"indexing,omitempty"`
	Sharing  SharingConfig  `json:"sharing,omitempty"`
}

func (c Config) getVersion() string {
	return c.Version
}

// PathConfig locates the shared photo tree and the personal space the
// albums are created in.
type PathConfig struct {
	// PersonalHomesRoot is the DSM homes volume (e.g. /volume1/homes).
	PersonalHomesRoot string `json:"personalHomesRoot,omitempty"`

	// PersonalSharedSubdir is the folder below the user's personal Photos
	// directory that the team roots are exposed into.
	PersonalSharedSubdir string `json:"personalSharedSubdir,omitempty"`

	// SharedPhotoRoot is the team-space photo share (e.g. /volume1/photo).
	SharedPhotoRoot string `json:"sharedPhotoRoot,omitempty"`

	// RootMountPrefix prefixes the mount-point directory created for each
	// team root so mounted roots are distinguishable from real folders.
	RootMountPrefix string `json:"rootMountPrefix,omitempty"`
}

// MountConfig controls the bind-mount lifecycle for team roots.
type MountConfig struct {
	EnableRootBindMounts *bool `json:"enableRootBindMounts,omitempty"`
}

// BindMountsEnabled reports whether team roots are exposed via bind mounts.
// Defaults to true.
func (m MountConfig) BindMountsEnabled() bool {
	return m.EnableRootBindMounts == nil || *m.EnableRootBindMounts
}

// MediaConfig controls the filesystem media scan.
type MediaConfig struct {
	// ScanMaxDepth bounds how deep the scanner looks for media inside a
	// child folder. Zero or negative scans the full depth.
	ScanMaxDepth int `json:"scanMaxDepth,omitempty"`
}

// IndexingConfig bounds the waits on the remote indexing jobs.
type IndexingConfig struct {
	ReindexSettleSeconds   int    `json:"reindexSettleSeconds,omitempty"`
	FilterWaitAttempts     int    `json:"filterWaitAttempts,omitempty"`
	FilterWaitDelay        int    `json:"filterWaitDelay,omitempty"`
	ForceReindexOnStart    bool   `json:"forceReindexOnStart,omitempty"`
	ReindexAfterMount      *bool  `json:"reindexAfterMount,omitempty"`
	PersonalReindexCommand string `json:"personalReindexCommand,omitempty"`
}

// ReindexEnabled reports whether the engine may trigger personal-space
// reindexing. Defaults to true.
func (i IndexingConfig) ReindexEnabled() bool {
	return i.ReindexAfterMount == nil || *i.ReindexAfterMount
}

// SharingConfig declares the managed roots and how their albums are shared.
type SharingConfig struct {
	ManagedRoots       []string            `json:"managedRoots,omitempty"`
	RootShareWith      map[string][]string `json:"rootShareWith,omitempty"`
	DefaultShareWith   []string            `json:"defaultShareWith,omitempty"`
	DefaultPermission  string              `json:"defaultPermission,omitempty"`
	DefaultShareRoles  []string            `json:"defaultShareRoles,omitempty"`
	PersonalAlbumRoots []PersonalRoot      `json:"personalAlbumRoots,omitempty"`
}

// PersonalRoot configures album synchronization for a subtree that already
// lives inside the user's personal Photos directory.
type PersonalRoot struct {
	// Path is absolute, or relative to the personal Photos directory.
	Path       string   `json:"path"`
	Label      string   `json:"label,omitempty"`
	ShareWith  []string `json:"shareWith,omitempty"`
	Permission string   `json:"permission,omitempty"`
	ShareRoles []string `json:"shareRoles,omitempty"`
}

// ShareConfig is the resolved sharing configuration for one root.
type ShareConfig struct {
	With       []string
	Permission string
	Roles      []string
}

// ShareOverrides are the optional command-line overrides for personal-root
// sharing. Nil slices mean "not overridden"; overlay is field by field.
type ShareOverrides struct {
	With       []string
	Roles      []string
	Permission string
}

// Merge overlays the overrides onto the base config.
func (base ShareConfig) Merge(o ShareOverrides) ShareConfig {
	merged := base
	if o.With != nil {
		merged.With = o.With
	}
	if o.Roles != nil {
		merged.Roles = o.Roles
	}
	if o.Permission != "" {
		merged.Permission = o.Permission
	}
	return merged
}

// Parse loads the sync config from its default path (or the path in
// ALBUMSYNC_CONFIG) and applies defaults.
func Parse() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Config{}, err
	}
	return ParsePath(path)
}

// ParsePath loads the sync config from an explicit path.
func ParsePath(path string) (Config, error) {
	config := Config{Version: SupportedConfigVersion}
	if err := parseConfig(path, &config, SupportedConfigVersion); err != nil {
		return Config{}, err
	}
	config.applyDefaults()
	return config, nil
}

// homedirExpand will be overridden in mock tests.
var homedirExpand = homedir.Expand

// GetConfigPath returns the expanded path to the sync config file.
func GetConfigPath() (string, error) {
	configPath := DefaultConfigPath
	if fromEnv := os.Getenv(ConfigPathEnvKey); fromEnv != "" {
		configPath = fromEnv
	}
	return homedirExpand(configPath)
}

func (c *Config) applyDefaults() {
	if c.Paths.PersonalHomesRoot == "" {
		c.Paths.PersonalHomesRoot = "/volume1/homes"
	}
	c.Paths.PersonalHomesRoot = strings.TrimRight(c.Paths.PersonalHomesRoot, "/")
	if c.Paths.SharedPhotoRoot == "" {
		c.Paths.SharedPhotoRoot = "/volume1/photo"
	}
	c.Paths.SharedPhotoRoot = strings.TrimRight(c.Paths.SharedPhotoRoot, "/")
	c.Paths.PersonalSharedSubdir = strings.Trim(c.Paths.PersonalSharedSubdir, "/")
	if c.Paths.PersonalSharedSubdir == "" {
		c.Paths.PersonalSharedSubdir = "photos-shared"
	}
	if c.Paths.RootMountPrefix == "" {
		c.Paths.RootMountPrefix = "mount_"
	}
	if c.Indexing.ReindexSettleSeconds == 0 {
		c.Indexing.ReindexSettleSeconds = 10
	}
	if c.Indexing.FilterWaitAttempts == 0 {
		c.Indexing.FilterWaitAttempts = 12
	}
	if c.Indexing.FilterWaitDelay == 0 {
		c.Indexing.FilterWaitDelay = 5
	}
	if c.Sharing.DefaultPermission == "" {
		c.Sharing.DefaultPermission = "view"
	}
}

// PersonalPhotosRoot is the user's personal Photos directory on disk.
func (c Config) PersonalPhotosRoot(username string) string {
	return path.Join(c.Paths.PersonalHomesRoot, username, "Photos")
}

// PersonalLinkRoot is the on-disk directory the team-root mount points live in.
func (c Config) PersonalLinkRoot(username string) string {
	return path.Join(c.PersonalPhotosRoot(username), c.Paths.PersonalSharedSubdir)
}

// VirtualLinkRoot is the virtual path of the shared subdirectory as the
// remote index sees it (the index roots virtual paths at the personal
// Photos directory).
func (c Config) VirtualLinkRoot() string {
	return vpath.Normalize(c.Paths.PersonalSharedSubdir)
}

// MountAlias is the directory name a team root is mounted under.
func (c Config) MountAlias(label string) string {
	return strings.TrimSpace(c.Paths.RootMountPrefix + label)
}

// RootTargetPath is the virtual path a team root's children are indexed under.
func (c Config) RootTargetPath(label string) string {
	return vpath.Join(c.VirtualLinkRoot(), c.MountAlias(label))
}

// MountTargetPath is the on-disk mount point for a team root.
func (c Config) MountTargetPath(username, label string) string {
	return path.Join(c.PersonalLinkRoot(username), c.MountAlias(label))
}

// SourceRootPath is the team-space directory a root is mounted from.
func (c Config) SourceRootPath(label string) string {
	return path.Join(c.Paths.SharedPhotoRoot, label)
}

// ShareFor resolves the sharing configuration for a team root.
func (s SharingConfig) ShareFor(label string) ShareConfig {
	with := s.RootShareWith[label]
	if len(with) == 0 {
		with = s.DefaultShareWith
	}
	return ShareConfig{
		With:       with,
		Permission: s.DefaultPermission,
		Roles:      s.DefaultShareRoles,
	}
}

// ShareForPersonal resolves the sharing configuration for a personal root.
func (s SharingConfig) ShareForPersonal(root PersonalRoot) ShareConfig {
	share := ShareConfig{
		With:       root.ShareWith,
		Permission: root.Permission,
		Roles:      root.ShareRoles,
	}
	if len(share.With) == 0 {
		share.With = s.DefaultShareWith
	}
	if share.Permission == "" {
		share.Permission = s.DefaultPermission
	}
	if len(share.Roles) == 0 {
		share.Roles = s.DefaultShareRoles
	}
	return share
}

// TeamRoots returns the labels of the managed team roots in a stable,
// case-insensitive order. When no roots are configured explicitly, the
// shared photo root is scanned for candidate directories.
func (c Config) TeamRoots() []string {
	roots := []string{}
	for _, root := range c.Sharing.ManagedRoots {
		if label := strings.TrimSpace(root); label != "" {
			roots = append(roots, label)
		}
	}
	if len(roots) == 0 {
		roots = c.discoverTeamRoots()
	}
	sort.Slice(roots, func(i, j int) bool {
		return strings.ToLower(roots[i]) < strings.ToLower(roots[j])
	})
	return roots
}

func (c Config) discoverTeamRoots() []string {
	entries, err := afero.ReadDir(fs, c.Paths.SharedPhotoRoot)
	if err != nil {
		log.WithError(err).WithField("path", c.Paths.SharedPhotoRoot).
			Warn("Failed to discover managed roots from the shared photo root")
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(c.Paths.RootMountPrefix))
	var roots []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !IsValidFolderName(name) {
			continue
		}
		// Never manage our own mount points as roots.
		if prefix != "" && strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		roots = append(roots, name)
	}
	return roots
}
