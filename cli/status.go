package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [post]",
	Short: "Show repository status, or the lifecycle state of a post",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			msg, err := r.StatusMessage()
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		}

		post := args[0]
		status, annotation, err := r.StatusDetailed(post, "")
		if err != nil {
			return err
		}
		if annotation != "" {
			fmt.Printf("%s: %s %s\n", post, status, annotation)
		} else {
			fmt.Printf("%s: %s\n", post, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
