package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Sync the base branch from the remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		if err := r.Update(cmd.Context()); err != nil {
			return err
		}

		rev, err := r.Revision()
		if err != nil {
			return err
		}
		log.Info("updated repository", "revision", rev)
		fmt.Printf("Repository up to date at %s\n", rev)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
