// Package mount keeps the bind mounts that expose team-space roots inside
// the user's personal Photos directory in the state the configuration asks
// for.
package mount

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"albumsync/pkg/config"
	"albumsync/pkg/fsutil"
)

var fs = afero.NewOsFs()

// sameFile is overridden in tests, which run against a memory fs where
// device/inode comparison is meaningless.
var sameFile = func(a, b string) bool {
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// Manager reconciles the bind mounts for one user's managed team roots.
type Manager struct {
	cfg      config.Config
	username string
	runner   fsutil.Runner

	procMounts string
	mountCmd   string
	umountCmd  string

	changed bool
}

// NewManager returns a Manager over the real mount table.
func NewManager(cfg config.Config, username string, runner fsutil.Runner) *Manager {
	return &Manager{
		cfg:        cfg,
		username:   username,
		runner:     runner,
		procMounts: "/proc/mounts",
		mountCmd:   "mount",
		umountCmd:  "umount",
	}
}

// Changed reports whether any mount was applied or detached during this
// run. The caller uses it to decide on a final reindex.
func (m *Manager) Changed() bool {
	return m.changed
}

// TargetPath is the on-disk mount point for a team root.
func (m *Manager) TargetPath(label string) string {
	return m.cfg.MountTargetPath(m.username, label)
}

// Active reports whether anything is mounted at the root's target path.
func (m *Manager) Active(label string) bool {
	return m.source(m.TargetPath(label)) != ""
}

// EnsureReady converges the bind mount for one team root and reports
// whether a fresh mount was applied. A fresh mount means the remote index
// has never seen the content, so the caller defers the root until a reindex
// has had a chance to run. Failures are logged, never fatal; the root is
// simply processed against whatever the index already knows.
func (m *Manager) EnsureReady(label string) bool {
	if !m.cfg.Mounts.BindMountsEnabled() {
		return false
	}
	expected := m.cfg.SourceRootPath(label)
	target := m.TargetPath(label)
	existing := m.source(target)

	if m.matches(target, expected) {
		if existing != "" && filepath.Clean(existing) != expected {
			log.WithFields(log.Fields{
				"root":   label,
				"source": existing,
			}).Info("Bind mount resolves to the expected content under a different source path")
		}
		return false
	}
	if existing != "" && filepath.Clean(existing) == expected {
		return false
	}

	if existing != "" {
		log.WithFields(log.Fields{
			"root":     label,
			"source":   existing,
			"expected": expected,
		}).Warn("Bind mount points at the wrong source; remounting")
		if !m.unmount(target, label) {
			return false
		}
	} else {
		log.WithField("root", label).Info("Bind mount is not active; applying it now")
	}
	return m.bind(label, expected, target)
}

// Cleanup detaches the root's bind mount and removes the mount point when
// it is an empty directory or a stale symlink. Returns how many filesystem
// entries were removed.
func (m *Manager) Cleanup(label string) int {
	target := m.TargetPath(label)
	if !lexists(target) {
		log.WithFields(log.Fields{"root": label, "path": target}).
			Info("Mount path missing; nothing to clean up")
		return 0
	}

	if !m.unmount(target, label) {
		log.WithFields(log.Fields{"root": label, "path": target}).
			Info("No active bind mount found")
	}
	if isSymlink(target) {
		if err := fs.Remove(target); err != nil {
			log.WithError(err).WithField("path", target).Warn("Unable to remove root link")
			return 0
		}
		log.WithFields(log.Fields{"root": label, "path": target}).Info("Removed root link")
		return 1
	}

	entries, err := afero.ReadDir(fs, target)
	if err != nil {
		log.WithError(err).WithField("path", target).Warn("Unable to inspect mount point during cleanup")
		return 0
	}
	if len(entries) != 0 {
		return 0
	}
	if err := fs.Remove(target); err != nil {
		log.WithError(err).WithField("path", target).Warn("Unable to remove mount directory")
		return 0
	}
	log.WithFields(log.Fields{"root": label, "path": target}).Info("Removed empty mount directory")
	return 1
}

func (m *Manager) bind(label, source, target string) bool {
	if exists, _ := afero.Exists(fs, source); !exists {
		log.WithFields(log.Fields{"root": label, "path": source}).
			Warn("Shared root missing; skipping bind mount")
		return false
	}
	if isSymlink(target) {
		log.WithField("path", target).
			Warn("Mount point is still a symlink; remove it or run unmount --all first")
		return false
	}
	if err := fs.MkdirAll(target, 0755); err != nil {
		log.WithError(err).WithField("path", target).Warn("Unable to create mount point")
		return false
	}
	if m.matches(target, source) {
		return false
	}
	if existing := m.source(target); existing != "" {
		log.WithFields(log.Fields{
			"root":   label,
			"path":   target,
			"source": existing,
		}).Warn("Mount point already carries another mount; skipping")
		return false
	}
	entries, err := afero.ReadDir(fs, target)
	if err != nil {
		log.WithError(err).WithField("path", target).Warn("Unable to inspect mount point before mounting")
		return false
	}
	if len(entries) != 0 {
		log.WithFields(log.Fields{"root": label, "path": target}).
			Warn("Mount point is not empty; aborting bind mount")
		return false
	}

	if err := m.runner.Run(m.mountCmd, "--bind", source, target); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"source": source,
			"target": target,
		}).Error("Failed to bind mount")
		return false
	}
	log.WithFields(log.Fields{"source": source, "target": target}).Info("Bind mount applied")
	m.changed = true
	return true
}

// unmount detaches whatever is mounted at target, falling back to a lazy
// unmount when the mount point is busy.
func (m *Manager) unmount(target, label string) bool {
	existing := m.source(target)
	if existing == "" {
		return false
	}

	err := m.runner.Run(m.umountCmd, target)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "busy") {
		log.WithField("path", target).Warn("Mount point is busy; attempting lazy unmount")
		err = m.runner.Run(m.umountCmd, "-l", target)
	}
	if err != nil {
		log.WithError(err).WithField("path", target).Error("Failed to unmount")
		return false
	}
	log.WithFields(log.Fields{
		"root":   label,
		"path":   target,
		"source": existing,
	}).Info("Detached bind mount")
	m.changed = true
	return true
}

// matches reports whether target is a mount of the expected source content.
func (m *Manager) matches(target, source string) bool {
	if m.source(target) == "" {
		return false
	}
	return sameFile(target, source)
}

// source returns the mount source recorded for target in the mount table,
// or an empty string when nothing is mounted there.
func (m *Manager) source(target string) string {
	data, err := afero.ReadFile(fs, m.procMounts)
	if err != nil {
		return ""
	}
	normalized := filepath.Clean(target)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mountPoint := decodeMountToken(fields[1])
		if filepath.Clean(mountPoint) == normalized {
			return decodeMountToken(fields[0])
		}
	}
	return ""
}

// decodeMountToken undoes the octal escaping the kernel applies to mount
// table entries (space becomes \040 and so on).
func decodeMountToken(token string) string {
	if !strings.Contains(token, `\`) {
		return token
	}
	var decoded strings.Builder
	for i := 0; i < len(token); i++ {
		if token[i] == '\\' && i+3 < len(token) && isOctal(token[i+1]) && isOctal(token[i+2]) && isOctal(token[i+3]) {
			decoded.WriteByte((token[i+1]-'0')<<6 | (token[i+2]-'0')<<3 | (token[i+3] - '0'))
			i += 3
			continue
		}
		if token[i] == '\\' && i+1 < len(token) && token[i+1] == '\\' {
			decoded.WriteByte('\\')
			i++
			continue
		}
		decoded.WriteByte(token[i])
	}
	return decoded.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func isSymlink(path string) bool {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return false
	}
	info, _, err := lstater.LstatIfPossible(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func lexists(path string) bool {
	if lstater, ok := fs.(afero.Lstater); ok {
		if _, _, err := lstater.LstatIfPossible(path); err == nil {
			return true
		}
		return false
	}
	exists, _ := afero.Exists(fs, path)
	return exists
}
