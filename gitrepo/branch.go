package gitrepo

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/FooBarQuaxx/knowledge-repo/logger"
)

// baseCommit resolves the tip of the base branch.
func (r *Repo) baseCommit() (*object.Commit, error) {
	return r.commitAt(r.cfg.BaseBranch)
}

// UnmergedBranches returns local branches not yet merged into the base
// branch, base excluded, in lexicographic order. Branch listing order is not
// guaranteed by the underlying storage, so an explicit order keeps ambiguity
// resolution deterministic.
func (r *Repo) UnmergedBranches() ([]string, error) {
	base, err := r.baseCommit()
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var out []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if name == r.cfg.BaseBranch {
			return nil
		}
		tip, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return fmt.Errorf("failed to load tip of %s: %w", name, err)
		}
		if tip.Hash == base.Hash {
			return nil
		}
		merged, err := tip.IsAncestor(base)
		if err != nil {
			return fmt.Errorf("failed to check merge state of %s: %w", name, err)
		}
		if !merged {
			out = append(out, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// diffAgainstBase diffs a branch tip against its merge-base with the base
// branch, so only the branch's own work shows up, not drift of the base.
func (r *Repo) diffAgainstBase(branch string) (object.Changes, error) {
	tip, err := r.commitAt(branch)
	if err != nil {
		return nil, err
	}
	base, err := r.baseCommit()
	if err != nil {
		return nil, err
	}

	target := base
	if bases, err := tip.MergeBase(base); err == nil && len(bases) > 0 {
		target = bases[0]
	}

	tipTree, err := tip.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", branch, err)
	}
	targetTree, err := target.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load base tree: %w", err)
	}

	changes, err := object.DiffTree(targetTree, tipTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s against base: %w", branch, err)
	}
	return changes, nil
}

// LocalPosts maps each given branch to the set of post paths its diff
// against the base touches. A nil branch list means all unmerged branches.
func (r *Repo) LocalPosts(branches []string) (map[string][]string, error) {
	if branches == nil {
		var err error
		branches, err = r.UnmergedBranches()
		if err != nil {
			return nil, err
		}
	}

	out := make(map[string][]string, len(branches))
	for _, branch := range branches {
		changes, err := r.diffAgainstBase(branch)
		if err != nil {
			return nil, err
		}

		set := make(map[string]struct{})
		for _, ch := range changes {
			name := ch.From.Name
			if name == "" {
				name = ch.To.Name
			}
			if post := r.postFromChangedPath(name); post != "" {
				set[post] = struct{}{}
			}
		}

		posts := make([]string, 0, len(set))
		for p := range set {
			posts = append(posts, p)
		}
		sort.Strings(posts)
		out[branch] = posts
	}
	return out, nil
}

// postFromChangedPath walks a changed file's path upward until the post
// directory boundary. Files outside any post yield "".
func (r *Repo) postFromChangedPath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		if strings.HasSuffix(seg, r.cfg.PostSuffix) {
			return path.Join(segs[:i+1]...)
		}
	}
	return ""
}

// BranchForPost resolves the branch owning a post. Resolution order: a
// branch named exactly after the post; then any unmerged branch whose diff
// against the base touches the post; then the base branch when the post is
// published. Ambiguous ownership (several branches touch the post) is
// resolved through the prompter when interactive, else deterministically by
// the first branch in lexicographic order.
func (r *Repo) BranchForPost(post string, interactive bool) (string, error) {
	if post == "" {
		return "", fmt.Errorf("%w: empty post path", ErrPostNotFound)
	}

	branches, err := r.UnmergedBranches()
	if err != nil {
		return "", err
	}
	for _, b := range branches {
		if b == post {
			return b, nil
		}
	}

	posts, err := r.LocalPosts(branches)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, b := range branches {
		for _, p := range posts[b] {
			if p == post {
				matches = append(matches, b)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		published, err := r.publishedSet()
		if err != nil {
			return "", err
		}
		if _, ok := published[post]; ok {
			return r.cfg.BaseBranch, nil
		}
		return "", fmt.Errorf("%w: %s", ErrPostNotFound, post)
	case 1:
		return matches[0], nil
	}

	// matches inherits the lexicographic order of UnmergedBranches.
	if interactive {
		idx, err := r.prompter.SelectBranch(post, matches)
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(matches) {
			return "", fmt.Errorf("invalid branch selection %d for post %s", idx, post)
		}
		return matches[idx], nil
	}
	return matches[0], nil
}

// CheckoutOptions controls Checkout behavior.
type CheckoutOptions struct {
	// Create the branch when it does not exist.
	Create bool
	// Reset recreates the branch from its start point, discarding history.
	Reset bool
	// Soft offers to keep an unexpectedly checked-out branch instead of the
	// requested one.
	Soft bool
}

// Checkout switches the worktree to branch and returns the name of the
// branch actually checked out (the prompter may substitute the current one
// under Soft).
func (r *Repo) Checkout(branch string, opts CheckoutOptions) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}

	if !opts.Create {
		if !r.branchExists(branch) {
			return "", fmt.Errorf("branch %q does not exist", branch)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}); err != nil {
			return "", fmt.Errorf("failed to checkout %s: %w", branch, err)
		}
		return branch, nil
	}

	if opts.Soft {
		current, err := r.CurrentBranch()
		if err == nil && current != r.cfg.BaseBranch && current != branch &&
			!strings.HasSuffix(current, r.cfg.PostSuffix) {
			if use, perr := r.prompter.UseCurrentBranch(current, branch); perr == nil && use {
				branch = current
			}
		}
	}

	refName := plumbing.NewBranchReferenceName(branch)

	if opts.Reset || !r.branchExists(branch) {
		start, fromRemote, err := r.branchStart(branch)
		if err != nil {
			return "", err
		}
		if fromRemote {
			logger.WithComponent("gitrepo").Warn(
				"branch already exists upstream, you may be clobbering someone's work",
				"branch", branch)
		}
		if r.branchExists(branch) {
			// Recreate the branch at the start point.
			if err := r.repo.Storer.SetReference(plumbing.NewHashReference(refName, start)); err != nil {
				return "", fmt.Errorf("failed to reset branch %s: %w", branch, err)
			}
			if err := wt.Checkout(&git.CheckoutOptions{Branch: refName, Force: true}); err != nil {
				return "", fmt.Errorf("failed to checkout %s: %w", branch, err)
			}
			return branch, nil
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: refName, Create: true, Hash: start}); err != nil {
			return "", fmt.Errorf("failed to create branch %s: %w", branch, err)
		}
		return branch, nil
	}

	if err := wt.Checkout(&git.CheckoutOptions{Branch: refName}); err != nil {
		return "", fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return branch, nil
}

// branchStart picks where a new branch begins: the same-named remote branch
// when one exists, else the remote base branch, else the local base branch.
// The second return value reports whether the same-named upstream was used.
func (r *Repo) branchStart(branch string) (plumbing.Hash, bool, error) {
	if r.hasRemote() {
		if ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.cfg.RemoteName, branch), true); err == nil {
			return ref.Hash(), true, nil
		}
		if ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.cfg.RemoteName, r.cfg.BaseBranch), true); err == nil {
			return ref.Hash(), false, nil
		}
	}
	base, err := r.baseCommit()
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	return base.Hash, false, nil
}

func (r *Repo) branchExists(branch string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}
