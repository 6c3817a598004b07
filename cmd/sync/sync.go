package sync

import (
	"github.com/spf13/cobra"

	"albumsync/cmd/util"
	"albumsync/pkg/albums"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var skipMounts bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mount managed roots and reconcile their albums.",
		Long: "Ensure the bind mounts for every managed team root, wait for the\n" +
			"service to index their folders, and converge the condition albums:\n" +
			"missing albums are created, existing ones keep their identity and get\n" +
			"their sharing refreshed, and albums whose folder disappeared are\n" +
			"removed. Folders and media are never touched.",
		Run: func(_ *cobra.Command, _ []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			opts := albums.RunOptions{
				ManageMounts:      !skipMounts,
				AllowDeferOnMount: !skipMounts,
			}
			if err := engine.Run(opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&skipMounts, "skip-mounts", false,
		"Reconcile albums against the existing mounts without changing them.")
	return cmd
}
