package personal

import (
	"strings"

	"github.com/spf13/cobra"

	"albumsync/cmd/util"
	"albumsync/pkg/config"
	"albumsync/pkg/errors"
)

// New creates a new `personal` command with its subcommands.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personal",
		Short: "Manage albums for roots inside the personal Photos directory.",
	}
	cmd.AddCommand(newCreate(), newDelete())
	return cmd
}

func newCreate() *cobra.Command {
	var (
		shareWith  string
		roles      string
		permission string
		maxDepth   int
		path       string
		label      string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or refresh albums for the configured personal roots.",
		Long: "Reconcile albums for the personal roots in the sync config, or for an\n" +
			"ad-hoc path given with --path. Sharing flags override the configured\n" +
			"values for this run only.",
		Run: func(cmd *cobra.Command, _ []string) {
			if label != "" && path == "" {
				util.HandleFatalError(errFlagRequiresPath)
			}
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}

			var explicit []config.PersonalRoot
			if path != "" {
				root, err := engine.PersonalRootFromPath(path, label)
				if err != nil {
					util.HandleFatalError(err)
				}
				explicit = []config.PersonalRoot{root}
			}
			overrides := config.ShareOverrides{
				With:       splitCSV(shareWith),
				Roles:      splitCSV(roles),
				Permission: strings.TrimSpace(permission),
			}
			depth := 0
			if cmd.Flags().Changed("max-depth") {
				depth = maxDepth
				if depth <= 0 {
					depth = -1
				}
			}
			if err := engine.RunPersonal(explicit, overrides, depth); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&shareWith, "share-with", "",
		"Comma-separated users or groups that override the configured share targets.")
	cmd.Flags().StringVar(&roles, "roles", "",
		"Comma-separated sharing roles that override the configured roles.")
	cmd.Flags().StringVar(&permission, "permission", "",
		"Override the sharing permission (view/download/manager).")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0,
		"Override the maximum folder depth scanned (<=0 scans the full depth).")
	addPathFlags(cmd, &path, &label)
	return cmd
}

func newDelete() *cobra.Command {
	var (
		path  string
		label string
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the albums created for personal roots.",
		Long: "Delete the albums managed under the configured personal roots, or\n" +
			"under an ad-hoc path given with --path. Folders and media are never\n" +
			"removed.",
		Run: func(_ *cobra.Command, _ []string) {
			if label != "" && path == "" {
				util.HandleFatalError(errFlagRequiresPath)
			}
			engine, err := util.NewEngine()
			if err != nil {
				util.HandleFatalError(err)
			}

			var explicit []config.PersonalRoot
			var labels []string
			if path != "" {
				root, err := engine.PersonalRootFromPath(path, label)
				if err != nil {
					util.HandleFatalError(err)
				}
				explicit = []config.PersonalRoot{root}
				labels = []string{root.Label}
			}
			if _, err := engine.DeletePersonal(labels, explicit); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	addPathFlags(cmd, &path, &label)
	return cmd
}

var errFlagRequiresPath = errors.NewFriendlyError("--label requires --path.")

// splitCSV splits a comma-separated flag value into its trimmed, non-empty
// parts. An empty value yields nil, meaning "not overridden".
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func addPathFlags(cmd *cobra.Command, path, label *string) {
	cmd.Flags().StringVar(path, "path", "",
		"Absolute path, or path relative to the personal Photos directory, for ad-hoc operations.")
	cmd.Flags().StringVar(label, "label", "",
		"Custom label used for albums derived from the ad-hoc path.")
}
