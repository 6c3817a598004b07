// Package util holds helpers shared by the CLI subcommands.
package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"albumsync/pkg/errors"
)

// HandleFatalError prints a friendly version of the error and exits.
func HandleFatalError(err error) {
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	os.Exit(1)
}

// HandlePanic converts a panic into a readable crash report. Deferred from
// main so users never see a raw Go stack dump without context.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}
	log.WithField("panic", r).Error("Unexpected crash")
	fmt.Fprintf(os.Stderr, "%s\n", debug.Stack())
	os.Exit(1)
}
