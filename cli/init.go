package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FooBarQuaxx/knowledge-repo/config"
	"github.com/FooBarQuaxx/knowledge-repo/gitrepo"
)

var (
	initResourcesURL string
	initBaseBranch   string
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new knowledge repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := repoPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no repository path given")
		}
		path = expandHome(path)

		cfg := config.Default()
		if initBaseBranch != "" {
			cfg.BaseBranch = initBaseBranch
		}
		cfg.ResourcesURL = initResourcesURL

		r, err := gitrepo.Open(path, gitrepo.Options{AutoCreate: true, Config: cfg})
		if err != nil {
			return err
		}

		log.Info("initialized repository", "path", r.Path())
		fmt.Printf("Initialized knowledge repository at %s (base branch %s)\n",
			r.Path(), r.Config().BaseBranch)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initResourcesURL, "resources", "", "Upstream URL for shared resources")
	initCmd.Flags().StringVar(&initBaseBranch, "base-branch", "", "Base branch name (default master)")
	rootCmd.AddCommand(initCmd)
}
