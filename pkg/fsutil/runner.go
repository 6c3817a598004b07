// Package fsutil holds the small host-facing helpers shared by the mount
// and index packages.
package fsutil

import (
	"bytes"
	"os/exec"
	"strings"

	"albumsync/pkg/errors"
)

// Runner executes a host command. It exists so tests can record invocations
// instead of touching the system.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands on the real host.
type ExecRunner struct{}

// Run implements Runner. Stderr is folded into the returned error so the
// caller's log line carries the tool's own diagnostic.
func (ExecRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return errors.WithContext(err, detail)
		}
		return err
	}
	return nil
}
