package mount

import (
	"github.com/spf13/cobra"

	"albumsync/cmd/util"
)

// New creates a new `mount` command.
func New() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Apply the bind mounts for managed team roots.",
		Long: "Bind mount every managed team root into the personal Photos\n" +
			"directory without touching any album.",
		Run: func(_ *cobra.Command, _ []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			engine.EnsureMounts(wait)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false,
		"After mount changes, trigger a reindex and wait for the roots to be indexed.")
	return cmd
}
