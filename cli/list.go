package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FooBarQuaxx/knowledge-repo/gitrepo"
)

var (
	listPrefix   string
	listStatuses []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts in the repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		statuses := make([]gitrepo.PostStatus, 0, len(listStatuses))
		for _, s := range listStatuses {
			status, err := parseStatus(s)
			if err != nil {
				return err
			}
			statuses = append(statuses, status)
		}

		posts, err := r.Posts(listPrefix, statuses...)
		if err != nil {
			return err
		}
		for _, p := range posts {
			fmt.Println(p)
		}
		return nil
	},
}

func parseStatus(s string) (gitrepo.PostStatus, error) {
	switch s {
	case "published":
		return gitrepo.StatusPublished, nil
	case "submitted":
		return gitrepo.StatusSubmitted, nil
	case "draft":
		return gitrepo.StatusDraft, nil
	default:
		return 0, fmt.Errorf("unknown status %q (want published, submitted or draft)", s)
	}
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Restrict the listing to a subtree")
	listCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Statuses to list (default published)")
	rootCmd.AddCommand(listCmd)
}
