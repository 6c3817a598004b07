package index

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"albumsync/pkg/fsutil"
)

// Targeted requests a reindex scoped to a single filesystem path. DSM ships
// command line indexer tools that accept a path argument; when one is
// available it beats waiting for the service-wide job to walk everything.
type Targeted interface {
	// Request asks for a targeted reindex of path. Returns whether a
	// request was actually issued.
	Request(path string) bool
}

// NopTargeted is used when no indexer tool is available on the host.
type NopTargeted struct{}

// Request implements Targeted.
func (NopTargeted) Request(string) bool {
	return false
}

// CommandTargeted shells out to a DSM indexer binary. Requests are
// deduplicated per path for the lifetime of the value, matching the
// run-scoped dedup of the service-wide Reindexer.
type CommandTargeted struct {
	runner   fsutil.Runner
	command  []string
	username string

	requested map[string]struct{}
}

// NewCommandTargeted wraps a detected indexer command line. The command's
// first element is the binary; the remaining elements are only used for
// custom commands configured by the operator.
func NewCommandTargeted(runner fsutil.Runner, command []string, username string) *CommandTargeted {
	return &CommandTargeted{
		runner:    runner,
		command:   command,
		username:  username,
		requested: map[string]struct{}{},
	}
}

// Request implements Targeted.
func (t *CommandTargeted) Request(path string) bool {
	normalized := filepath.Clean(path)
	if normalized == "" || normalized == "." {
		return false
	}
	if _, ok := t.requested[normalized]; ok {
		return false
	}
	args := t.args(normalized)
	if len(args) == 0 {
		return false
	}

	if err := t.runner.Run(args[0], args[1:]...); err != nil {
		log.WithError(err).WithField("path", normalized).
			Warn("Targeted reindex command failed")
		return false
	}
	t.requested[normalized] = struct{}{}
	log.WithField("path", normalized).Info("Requested targeted reindex")
	return true
}

// args shapes the invocation to the tool family. Unknown binaries get the
// operator-configured arguments followed by the path.
func (t *CommandTargeted) args(path string) []string {
	if len(t.command) == 0 || t.command[0] == "" {
		return nil
	}
	binary := t.command[0]
	name := filepath.Base(binary)
	switch {
	case strings.Contains(name, "synophoto_dsm_userindex"):
		return []string{binary, "--user", t.username, "--path", path}
	case strings.Contains(name, "synofoto-bin-index-tool"):
		return []string{binary, "-t", "basic", "-i", path}
	default:
		return append(append([]string{}, t.command...), path)
	}
}

// userIndexBins and indexToolBins are the install locations DSM has used
// across package versions.
var userIndexBins = []string{
	"/usr/syno/bin/synophoto_dsm_userindex",
	"/usr/syno/sbin/synophoto_dsm_userindex",
	"/usr/syno/bin/synophoto_cms_userindex",
	"/var/packages/SynologyPhotos/target/usr/bin/synophoto_dsm_userindex",
	"/var/packages/SynologyPhotos/target/usr/lib/synophoto/bin/synophoto_dsm_userindex",
}

var indexToolBins = []string{
	"/var/packages/SynologyPhotos/target/usr/bin/synofoto-bin-index-tool",
	"/var/packages/SynologyPhotos/target/usr/lib/synophoto/bin/synofoto-bin-index-tool",
}

// DetectTargeted picks the targeted reindex capability for this host. A
// configured command wins; otherwise the known DSM tool locations are
// probed. Hosts without any tool get NopTargeted.
func DetectTargeted(configured string, username string, runner fsutil.Runner) Targeted {
	if trimmed := strings.TrimSpace(configured); trimmed != "" {
		return NewCommandTargeted(runner, strings.Fields(trimmed), username)
	}
	if binary := firstExecutable(userIndexBins); binary != "" {
		return NewCommandTargeted(runner, []string{binary}, username)
	}
	if binary := firstExecutable(indexToolBins); binary != "" {
		return NewCommandTargeted(runner, []string{binary}, username)
	}
	return NopTargeted{}
}

func firstExecutable(candidates []string) string {
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode().Perm()&0111 != 0 {
			return candidate
		}
	}
	return ""
}
