package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FooBarQuaxx/knowledge-repo/gitrepo"
	"github.com/FooBarQuaxx/knowledge-repo/refstore"
)

var (
	addPath    string
	addBranch  string
	addMessage string
	addUpdate  bool
	addSquash  bool
)

var addCmd = &cobra.Command{
	Use:   "add <source>",
	Short: "Stage a post on its draft branch and commit it",
	Long: `Copies a post into the repository at the path given with --path,
checks out the post's draft branch, and commits the result. A single
source file becomes the post's knowledge.md; a source directory is
copied wholesale.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		if addPath == "" {
			return fmt.Errorf("no destination given: pass --path (e.g. 2026/q3/report.kp)")
		}

		r, err := openRepo()
		if err != nil {
			return err
		}

		branch, err := r.AddPrepare(addPath, gitrepo.AddOptions{
			Update: addUpdate,
			Branch: addBranch,
			Squash: addSquash,
		})
		if err != nil {
			return err
		}

		dst := filepath.Join(r.Path(), filepath.FromSlash(addPath))
		if err := copyPost(src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}

		// Bump the counter before committing so it lands with the post.
		rev, err := refstore.NewOS(r.Path()).NextRevision(addPath)
		if err != nil {
			return fmt.Errorf("failed to bump revision for %s: %w", addPath, err)
		}

		if err := r.AddFinalize(addPath, addMessage); err != nil {
			return err
		}

		log.Info("added post", "post", addPath, "branch", branch, "revision", rev)
		fmt.Printf("Added %s (revision %d) on branch %s\n", addPath, rev, branch)
		return nil
	},
}

// copyPost places src under dst: a file becomes dst/knowledge.md, a
// directory is copied recursively.
func copyPost(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, filepath.Join(dst, "knowledge.md"))
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() {
	addCmd.Flags().StringVarP(&addPath, "path", "p", "", "Destination post path inside the repository")
	addCmd.Flags().StringVarP(&addMessage, "message", "m", "", "Commit message (prompted when empty)")
	addCmd.Flags().StringVar(&addBranch, "branch", "", "Branch to stage the post on (defaults to the post path)")
	addCmd.Flags().BoolVar(&addUpdate, "update", false, "Allow replacing an existing post")
	addCmd.Flags().BoolVar(&addSquash, "squash", false, "Recreate the draft branch, discarding its old history")
	rootCmd.AddCommand(addCmd)
}
