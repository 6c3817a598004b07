package albums

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"albumsync/cmd/util"
	albumsPkg "albumsync/pkg/albums"
)

// New creates a new `albums` command with its subcommands.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "albums",
		Short: "Create, list, and delete the managed condition albums.",
	}
	cmd.AddCommand(newCreate(), newDelete(), newList())
	return cmd
}

func newCreate() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create or refresh albums against the existing mounts.",
		Long: "Reconcile the condition albums for every managed team root without\n" +
			"changing any mount. The bind mounts must already be in place; run\n" +
			"the mount command first.",
		Run: func(_ *cobra.Command, _ []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			engine.PrepareIndex()
			opts := albumsPkg.RunOptions{ManageMounts: false, AllowDeferOnMount: false}
			if err := engine.Run(opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func newDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete managed albums, or a single album by exact name.",
		Long: "Without arguments, delete every condition album whose name carries a\n" +
			"managed team root's prefix. With a name, delete exactly that album.\n" +
			"Folders and media are never removed.",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			if len(args) == 1 {
				if _, err := engine.DeleteByName(args[0]); err != nil {
					util.HandleFatalError(err)
				}
				return
			}
			if _, err := engine.DeleteManaged(); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func newList() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remote albums and the folders backing them.",
		Run: func(_ *cobra.Command, _ []string) {
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}
			listings, err := engine.List(path)
			if err != nil {
				util.HandleFatalError(err)
			}
			for _, listing := range listings {
				if len(listing.Folders) != 0 {
					fmt.Printf("- %s (id %d) | folders: %s\n",
						listing.Album.Name, listing.Album.ID, strings.Join(listing.Folders, ", "))
				} else {
					fmt.Printf("- %s (id %d)\n", listing.Album.Name, listing.Album.ID)
				}
			}
			fmt.Printf("Listed %d album(s)\n", len(listings))
		},
	}
	cmd.Flags().StringVar(&path, "path", "",
		"Restrict the listing to albums over folders at or below this personal path.")
	return cmd
}
