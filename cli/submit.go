package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	submitBranch string
	submitForce  bool
)

var submitCmd = &cobra.Command{
	Use:   "submit [post]",
	Short: "Push a post's draft branch upstream for review",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post := ""
		if len(args) == 1 {
			post = args[0]
		}

		r, err := openRepo()
		if err != nil {
			return err
		}

		branch, err := r.Submit(cmd.Context(), post, submitBranch, submitForce)
		if err != nil {
			return err
		}

		log.Info("submitted post", "post", post, "branch", branch, "force", submitForce)
		fmt.Printf("Pushed branch %s upstream\n", branch)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitBranch, "branch", "", "Branch to push (resolved from the post when empty)")
	submitCmd.Flags().BoolVar(&submitForce, "force", false, "Force-push the branch")
	rootCmd.AddCommand(submitCmd)
}
