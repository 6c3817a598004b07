package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumsync/pkg/errors"
)

func useMemFs(t *testing.T) afero.Fs {
	oldFs := fs
	t.Cleanup(func() { fs = oldFs })
	fs = afero.NewMemMapFs()
	return fs
}

func TestParsePath(t *testing.T) {
	memFs := useMemFs(t)
	require.NoError(t, afero.WriteFile(memFs, "/config.yaml", []byte(`
version: v1alpha1
paths:
  sharedPhotoRoot: /volume2/media/
  personalSharedSubdir: /linked/
sharing:
  managedRoots: ["Trips", "Family"]
  defaultShareWith: ["alice"]
`), 0644))

	config, err := ParsePath("/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/volume2/media", config.Paths.SharedPhotoRoot)
	assert.Equal(t, "linked", config.Paths.PersonalSharedSubdir)
	assert.Equal(t, []string{"Trips", "Family"}, config.Sharing.ManagedRoots)

	// Unset fields fall back to their defaults.
	assert.Equal(t, "/volume1/homes", config.Paths.PersonalHomesRoot)
	assert.Equal(t, "mount_", config.Paths.RootMountPrefix)
	assert.Equal(t, 12, config.Indexing.FilterWaitAttempts)
	assert.Equal(t, 5, config.Indexing.FilterWaitDelay)
	assert.Equal(t, 10, config.Indexing.ReindexSettleSeconds)
	assert.Equal(t, "view", config.Sharing.DefaultPermission)
	assert.True(t, config.Mounts.BindMountsEnabled())
	assert.True(t, config.Indexing.ReindexEnabled())
}

func TestParsePathMissingFile(t *testing.T) {
	useMemFs(t)

	_, err := ParsePath("/missing.yaml")
	assert.IsType(t, errors.FileNotFound{}, err)
}

func TestParsePathBadVersion(t *testing.T) {
	memFs := useMemFs(t)
	require.NoError(t, afero.WriteFile(memFs, "/config.yaml",
		[]byte("version: v2\n"), 0644))

	_, err := ParsePath("/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestParsePathUnknownField(t *testing.T) {
	memFs := useMemFs(t)
	require.NoError(t, afero.WriteFile(memFs, "/config.yaml", []byte(`
version: v1alpha1
mystery: true
`), 0644))

	_, err := ParsePath("/config.yaml")
	assert.Error(t, err)
}

func TestPathHelpers(t *testing.T) {
	config := Config{Paths: PathConfig{
		PersonalHomesRoot:    "/volume1/homes",
		SharedPhotoRoot:      "/volume1/photo",
		PersonalSharedSubdir: "photos-shared",
		RootMountPrefix:      "mount_",
	}}

	assert.Equal(t, "/volume1/homes/bob/Photos", config.PersonalPhotosRoot("bob"))
	assert.Equal(t, "/volume1/homes/bob/Photos/photos-shared", config.PersonalLinkRoot("bob"))
	assert.Equal(t, "/photos-shared", config.VirtualLinkRoot())
	assert.Equal(t, "mount_Trips", config.MountAlias("Trips"))
	assert.Equal(t, "/photos-shared/mount_Trips", config.RootTargetPath("Trips"))
	assert.Equal(t, "/volume1/homes/bob/Photos/photos-shared/mount_Trips",
		config.MountTargetPath("bob", "Trips"))
	assert.Equal(t, "/volume1/photo/Trips", config.SourceRootPath("Trips"))
}

func TestTeamRootsExplicit(t *testing.T) {
	config := Config{Sharing: SharingConfig{
		ManagedRoots: []string{" Trips ", "", "family", "Archive"},
	}}
	assert.Equal(t, []string{"Archive", "family", "Trips"}, config.TeamRoots())
}

func TestTeamRootsDiscovery(t *testing.T) {
	memFs := useMemFs(t)
	for _, dir := range []string{
		"/volume1/photo/Trips",
		"/volume1/photo/family",
		"/volume1/photo/@eaDir",
		"/volume1/photo/.hidden",
		"/volume1/photo/mount_Trips",
	} {
		require.NoError(t, memFs.MkdirAll(dir, 0755))
	}

	config := Config{Paths: PathConfig{
		SharedPhotoRoot: "/volume1/photo",
		RootMountPrefix: "mount_",
	}}
	assert.Equal(t, []string{"family", "Trips"}, config.TeamRoots())
}

func TestShareFor(t *testing.T) {
	sharing := SharingConfig{
		RootShareWith:     map[string][]string{"Trips": {"bob"}},
		DefaultShareWith:  []string{"alice"},
		DefaultPermission: "view",
		DefaultShareRoles: []string{"download"},
	}

	share := sharing.ShareFor("Trips")
	assert.Equal(t, []string{"bob"}, share.With)
	assert.Equal(t, "view", share.Permission)

	share = sharing.ShareFor("Family")
	assert.Equal(t, []string{"alice"}, share.With)
	assert.Equal(t, []string{"download"}, share.Roles)
}

func TestShareForPersonal(t *testing.T) {
	sharing := SharingConfig{
		DefaultShareWith:  []string{"alice"},
		DefaultPermission: "view",
	}

	share := sharing.ShareForPersonal(PersonalRoot{Path: "Favorites"})
	assert.Equal(t, []string{"alice"}, share.With)
	assert.Equal(t, "view", share.Permission)

	share = sharing.ShareForPersonal(PersonalRoot{
		Path:       "Favorites",
		ShareWith:  []string{"carol"},
		Permission: "download",
	})
	assert.Equal(t, []string{"carol"}, share.With)
	assert.Equal(t, "download", share.Permission)
}

func TestShareConfigMerge(t *testing.T) {
	base := ShareConfig{With: []string{"alice"}, Permission: "view", Roles: []string{"view"}}

	merged := base.Merge(ShareOverrides{})
	assert.Equal(t, base, merged)

	merged = base.Merge(ShareOverrides{With: []string{"carol"}, Permission: "download"})
	assert.Equal(t, []string{"carol"}, merged.With)
	assert.Equal(t, "download", merged.Permission)
	assert.Equal(t, []string{"view"}, merged.Roles)
}
