package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/FooBarQuaxx/knowledge-repo/logger"
)

// AddOptions controls AddPrepare.
type AddOptions struct {
	// Update allows replacing an existing post.
	Update bool
	// Branch overrides the default branch name (the post path).
	Branch string
	// Squash recreates the branch from the base, discarding prior history.
	Squash bool
}

// AddPrepare readies the repository for adding or updating a post: it
// verifies the target path, then checks out (creating if necessary) the
// branch named after the post or the explicit override. The post-exists
// check runs before any checkout, so a refused add mutates no branch state.
// Returns the branch actually checked out.
func (r *Repo) AddPrepare(post string, opts AddOptions) (string, error) {
	if !r.cfg.IsPostPath(post) {
		return "", fmt.Errorf("post path %q must end with %s", post, r.cfg.PostSuffix)
	}

	target := filepath.Join(r.path, filepath.FromSlash(post))
	if !opts.Update {
		if _, err := os.Stat(target); err == nil {
			return "", fmt.Errorf("%w: %s (pass update to replace it)", ErrPostExists, post)
		}
	}

	branch := opts.Branch
	if branch == "" {
		branch = post
	}

	logger.WithComponent("gitrepo").Info("checking out branch for post",
		"post", post, "branch", branch, "squash", opts.Squash)

	actual, err := r.Checkout(branch, CheckoutOptions{Create: true, Soft: true, Reset: opts.Squash})
	if err != nil {
		return "", err
	}
	return actual, nil
}

// AddFinalize stages the post path and commits it. An empty message is
// requested from the prompter; a missing or interrupted message, or any
// commit failure, rolls the staged post back to its last committed state
// and returns the original error. Rollback is best-effort: cleanup failures
// are logged and swallowed so they never mask the original cause.
func (r *Repo) AddFinalize(post, message string) error {
	log := logger.WithComponent("gitrepo")

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	if _, err := wt.Add(filepath.ToSlash(post)); err != nil {
		return fmt.Errorf("failed to stage post %s: %w", post, err)
	}

	if message == "" {
		msg, perr := r.prompter.CommitMessage(post)
		if perr != nil {
			log.Warn("no commit message for post, rolling back", "post", post)
			r.rollbackAdd(post)
			return perr
		}
		message = msg
	}
	if strings.TrimSpace(message) == "" {
		log.Warn("empty commit message for post, rolling back", "post", post)
		r.rollbackAdd(post)
		return fmt.Errorf("%w: post %s", ErrNoCommitMessage, post)
	}

	if _, err := wt.Commit(message, &git.CommitOptions{Author: r.signature()}); err != nil {
		log.Error("commit failed, rolling back post addition", "post", post, "error", err)
		r.rollbackAdd(post)
		return fmt.Errorf("failed to commit post %s: %w", post, err)
	}

	log.Info("committed post", "post", post)
	return nil
}

// rollbackAdd resets the index and returns the post path to its last
// committed state: untracked artifacts under the post are removed, tracked
// files restored from HEAD. Every step is best-effort.
func (r *Repo) rollbackAdd(post string) {
	log := logger.WithComponent("gitrepo")

	wt, err := r.repo.Worktree()
	if err != nil {
		log.Warn("rollback: failed to open worktree", "error", err)
		return
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.MixedReset}); err != nil {
		log.Warn("rollback: index reset failed", "error", err)
	}

	st, err := wt.Status()
	if err != nil {
		log.Warn("rollback: failed to read status", "error", err)
		return
	}

	var headCommit *object.Commit
	if head, err := r.repo.Head(); err == nil {
		headCommit, _ = r.repo.CommitObject(head.Hash())
	}

	postPath := strings.TrimSuffix(post, "/")
	prefix := postPath + "/"
	for fpath, fstat := range st {
		if fpath != postPath && !strings.HasPrefix(fpath, prefix) {
			continue
		}
		abs := filepath.Join(r.path, filepath.FromSlash(fpath))

		if fstat.Worktree == git.Untracked {
			if err := os.Remove(abs); err != nil {
				log.Warn("rollback: failed to remove untracked file", "file", fpath, "error", err)
			}
			continue
		}
		if headCommit == nil {
			continue
		}
		f, err := headCommit.File(fpath)
		if err != nil {
			continue
		}
		contents, err := f.Contents()
		if err != nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			continue
		}
		if err := os.WriteFile(abs, []byte(contents), 0644); err != nil {
			log.Warn("rollback: failed to restore file", "file", fpath, "error", err)
		}
	}

	// Clear out directories the removals left empty.
	var dirs []string
	root := filepath.Join(r.path, filepath.FromSlash(postPath))
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		_ = os.Remove(d) // fails on non-empty directories, which is the point
	}
}

// Submit pushes a post's branch to the remote. Either a post path or an
// explicit branch must be given; the branch is resolved from the path when
// absent. The remote must be configured and pass the reachability preflight
// before any push is attempted. Submission never modifies local history.
// Returns the upstream branch name.
func (r *Repo) Submit(ctx context.Context, post, branch string, force bool) (string, error) {
	log := logger.WithComponent("gitrepo")

	if !r.hasRemote() {
		return "", fmt.Errorf("%w: cannot submit %s", ErrNoRemote, post)
	}
	if post == "" && branch == "" {
		return "", ErrAmbiguousTarget
	}

	if branch == "" {
		b, err := r.BranchForPost(post, false)
		if err != nil {
			if errors.Is(err, ErrPostNotFound) {
				return "", fmt.Errorf("%w: %s", ErrNoDraft, post)
			}
			return "", err
		}
		branch = b
	}

	if !r.RemoteAvailable() {
		return "", fmt.Errorf("%w: %s", ErrRemoteUnreachable, r.remoteURL())
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	if force {
		refspec = gitcfg.RefSpec("+" + string(refspec))
	}
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.cfg.RemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("failed to push branch %s: %w", branch, err)
	}

	log.Info("pushed local branch to upstream", "branch", branch, "force", force)
	return branch, nil
}
