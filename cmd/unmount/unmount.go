package unmount

import (
	"github.com/spf13/cobra"

	"albumsync/cmd/util"
)

// New creates a new `unmount` command.
func New() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "unmount",
		Short: "Detach the bind mounts for managed team roots.",
		Long: "Detach the bind mounts of every managed team root and remove the\n" +
			"empty mount points. With --all the managed albums are deleted too;\n" +
			"the shared folders and their media always stay in place.",
		Run: func(_ *cobra.Command, _ []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			if all {
				if _, _, err := engine.UnmapAll(); err != nil {
					util.HandleFatalError(err)
				}
				return
			}
			engine.UnmountAll()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false,
		"Also delete the managed albums before unmounting.")
	return cmd
}
