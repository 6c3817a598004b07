package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	albumsCmd "albumsync/cmd/albums"
	mountCmd "albumsync/cmd/mount"
	"albumsync/cmd/personal"
	syncCmd "albumsync/cmd/sync"
	unmountCmd "albumsync/cmd/unmount"
	"albumsync/cmd/util"
	"albumsync/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "ALBUMSYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "albumsync",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		albumsCmd.New(),
		mountCmd.New(),
		personal.New(),
		syncCmd.New(),
		unmountCmd.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
