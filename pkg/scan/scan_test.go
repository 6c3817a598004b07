package scan

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFs(t *testing.T, files []string, dirs []string) afero.Fs {
	fs := afero.NewMemMapFs()
	for _, dir := range dirs {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	for _, file := range files {
		require.NoError(t, afero.WriteFile(fs, file, []byte("x"), 0644))
	}
	return fs
}

func TestScanDirectMediaChildren(t *testing.T) {
	fs := newTestFs(t,
		[]string{
			"/root/Paris/eiffel.jpg",
			"/root/Berlin/gate.HEIC",
			"/root/Notes/readme.txt",
		},
		[]string{"/root/Empty"},
	)
	scanner := &Scanner{FS: fs}

	paths, status := scanner.Scan("/root", "/shared/mount_Trips")
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{
		"/shared/mount_Trips/Berlin",
		"/shared/mount_Trips/Paris",
	}, paths)
}

func TestScanNestedMediaReplacesParent(t *testing.T) {
	fs := newTestFs(t,
		[]string{"/root/Trips/2024/Paris/eiffel.jpg"},
		nil,
	)
	scanner := &Scanner{FS: fs}

	paths, status := scanner.Scan("/root", "/shared/mount_Photos")
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{"/shared/mount_Photos/Trips/2024/Paris"}, paths)
}

func TestScanSkipsReservedAndHiddenNames(t *testing.T) {
	fs := newTestFs(t,
		[]string{
			"/root/@eaDir/thumb.jpg",
			"/root/#snapshot/old.jpg",
			"/root/.hidden/secret.jpg",
			"/root/Paris/eiffel.jpg",
		},
		nil,
	)
	scanner := &Scanner{FS: fs}

	paths, status := scanner.Scan("/root", "/shared/mount_Trips")
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{"/shared/mount_Trips/Paris"}, paths)
}

func TestScanEmptyRoot(t *testing.T) {
	fs := newTestFs(t,
		[]string{"/root/Notes/readme.txt"},
		[]string{"/root/Blank"},
	)
	scanner := &Scanner{FS: fs}

	paths, status := scanner.Scan("/root", "/shared/mount_Trips")
	assert.Equal(t, Empty, status)
	assert.Empty(t, paths)
}

func TestScanMissingRoot(t *testing.T) {
	scanner := &Scanner{FS: afero.NewMemMapFs()}

	paths, status := scanner.Scan("/gone", "/shared/mount_Trips")
	assert.Equal(t, Missing, status)
	assert.Empty(t, paths)
}

func TestScanDepthLimit(t *testing.T) {
	fs := newTestFs(t,
		[]string{"/root/Deep/a/b/c/pic.jpg"},
		nil,
	)

	limited := &Scanner{FS: fs, MaxDepth: 2}
	paths, status := limited.Scan("/root", "/v")
	assert.Equal(t, Empty, status, "media beyond the depth limit stays invisible")
	assert.Empty(t, paths)

	unlimited := &Scanner{FS: fs}
	paths, status = unlimited.Scan("/root", "/v")
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{"/v/Deep/a/b/c"}, paths)
}

func TestScanSortsCaseInsensitively(t *testing.T) {
	fs := newTestFs(t,
		[]string{
			"/root/zurich/a.jpg",
			"/root/Amsterdam/b.jpg",
			"/root/berlin/c.jpg",
		},
		nil,
	)
	scanner := &Scanner{FS: fs}

	paths, status := scanner.Scan("/root", "/v")
	assert.Equal(t, Ok, status)
	assert.Equal(t, []string{"/v/Amsterdam", "/v/berlin", "/v/zurich"}, paths)
}
