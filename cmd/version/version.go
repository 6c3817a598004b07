package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"albumsync/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the albumsync version.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version:    %s\n", version.Version)
			fmt.Printf("build date: %s\n", version.BuildDate)
		},
	}
}
