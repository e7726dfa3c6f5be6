package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// PostStatus is a post's lifecycle status. It is derived from repository
// state on every query and never persisted.
type PostStatus int

const (
	// StatusPublished means the post is part of the base branch's tree.
	StatusPublished PostStatus = iota
	// StatusSubmitted means the post's branch has been pushed to the remote.
	StatusSubmitted
	// StatusDraft means the post only exists on a local branch.
	StatusDraft
)

func (s PostStatus) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusSubmitted:
		return "submitted"
	case StatusDraft:
		return "draft"
	}
	return fmt.Sprintf("PostStatus(%d)", int(s))
}

// publishedSet returns the set of posts in the base branch's tree, computed
// once per Repo.
func (r *Repo) publishedSet() (map[string]struct{}, error) {
	r.publishedOnce.Do(func() {
		posts, err := r.PublishedPosts("", "")
		if err != nil {
			r.publishedErr = err
			return
		}
		set := make(map[string]struct{}, len(posts))
		for _, p := range posts {
			set[p] = struct{}{}
		}
		r.published = set
	})
	return r.published, r.publishedErr
}

// PostStatusOf derives a post's status. See StatusDetailed for the rules.
func (r *Repo) PostStatusOf(post string) (PostStatus, error) {
	status, _, err := r.StatusDetailed(post, "")
	return status, err
}

// StatusDetailed derives a post's status plus a human-readable annotation.
//
// A post in the published tree is Published regardless of local branch
// state. Otherwise the owning branch is resolved (an explicit branch
// overrides resolution): the base branch means Published; a branch with a
// same-named ref on the remote means Submitted, annotated with ahead/behind
// counts; anything else is Draft. Unresolvable posts fail with
// ErrPostNotFound.
func (r *Repo) StatusDetailed(post, branch string) (PostStatus, string, error) {
	published, err := r.publishedSet()
	if err != nil {
		return StatusDraft, "", err
	}
	if _, ok := published[post]; ok {
		return StatusPublished, "", nil
	}

	if branch == "" {
		branch, err = r.BranchForPost(post, false)
		if err != nil {
			return StatusDraft, "", err
		}
	} else if !r.branchExists(branch) {
		return StatusDraft, "", fmt.Errorf("branch %q does not exist", branch)
	}

	if branch == r.cfg.BaseBranch {
		return StatusPublished, "", nil
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.cfg.RemoteName, branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return StatusDraft, "", nil
		}
		return StatusDraft, "", fmt.Errorf("failed to look up remote ref for %s: %w", branch, err)
	}

	localRef, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return StatusDraft, "", fmt.Errorf("failed to look up branch %s: %w", branch, err)
	}

	ahead, behind, err := r.aheadBehind(localRef.Hash(), remoteRef.Hash())
	if err != nil {
		return StatusDraft, "", err
	}

	var parts []string
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("- %d commits behind", behind))
	}
	if ahead > 0 {
		parts = append(parts, fmt.Sprintf("- %d commits ahead", ahead))
	}
	if branch != post {
		parts = append(parts, fmt.Sprintf("[On branch: %s]", branch))
	}
	return StatusSubmitted, strings.Join(parts, " "), nil
}

// aheadBehind counts the commits local has over remote and vice versa.
func (r *Repo) aheadBehind(local, remote plumbing.Hash) (ahead, behind int, err error) {
	ahead, err = r.countExclusive(local, remote)
	if err != nil {
		return 0, 0, err
	}
	behind, err = r.countExclusive(remote, local)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// countExclusive counts commits reachable from tip but not from exclude
// (rev-list exclude..tip semantics).
func (r *Repo) countExclusive(tip, exclude plumbing.Hash) (int, error) {
	if tip == exclude {
		return 0, nil
	}

	excludeCommit, err := r.repo.CommitObject(exclude)
	if err != nil {
		return 0, fmt.Errorf("failed to load commit %s: %w", exclude, err)
	}
	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(excludeCommit, nil, nil)
	if err := iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	}); err != nil {
		return 0, err
	}

	tipCommit, err := r.repo.CommitObject(tip)
	if err != nil {
		return 0, fmt.Errorf("failed to load commit %s: %w", tip, err)
	}
	count := 0
	iter = object.NewCommitPreorderIter(tipCommit, seen, nil)
	if err := iter.ForEach(func(c *object.Commit) error {
		if !seen[c.Hash] {
			count++
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return count, nil
}
