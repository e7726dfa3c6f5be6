// Package cli implements the knowledge command set and the terminal
// prompter backing interactive repository operations.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FooBarQuaxx/knowledge-repo/gitrepo"
	"github.com/FooBarQuaxx/knowledge-repo/logger"
)

var (
	repoPath string
	debug    bool

	// log carries the per-invocation operation ID on every record.
	log *slog.Logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:           "knowledge",
	Short:         "Manage a git-backed knowledge post repository",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, err := logger.DefaultLogPath(); err == nil {
			if err := logger.Init(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
			}
		}
		logger.SetDebug(debug)
		log = logger.WithOperation(uuid.NewString())
		log.Info("command invoked", "command", cmd.Name(), "args", args)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "r", os.Getenv("KNOWLEDGE_REPO"),
		"Path to the knowledge repository (defaults to $KNOWLEDGE_REPO)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// expandHome resolves a leading ~ in a repository path.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// openRepo validates the configured repository path and opens it with a
// terminal prompter attached.
func openRepo() (*gitrepo.Repo, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("no repository given: pass --repo or set KNOWLEDGE_REPO")
	}
	path := expandHome(repoPath)
	if err := ValidateRequired(DefaultPrerequisites(), path); err != nil {
		return nil, err
	}
	return gitrepo.Open(path, gitrepo.Options{
		Prompter: NewTerminalPrompter(os.Stdin, os.Stdout),
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}
