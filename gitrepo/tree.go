package gitrepo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// PublishedPosts lists the post paths in the tree of ref, optionally
// restricted to a prefix subtree. An empty ref means the base branch. The
// walk prunes submodule entries and never descends into a post directory,
// so files nested under a post are not reported as posts themselves. The
// listing is recomputed fresh on every call.
func (r *Repo) PublishedPosts(prefix, ref string) ([]string, error) {
	if ref == "" {
		ref = r.cfg.BaseBranch
	}
	c, err := r.commitAt(ref)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree at %s: %w", ref, err)
	}

	base := ""
	if prefix != "" {
		base = strings.Trim(prefix, "/")
		tree, err = tree.Tree(base)
		if err != nil {
			return nil, fmt.Errorf("failed to load subtree %s at %s: %w", prefix, ref, err)
		}
	}

	var posts []string
	if err := r.collectPosts(tree, base, &posts); err != nil {
		return nil, err
	}
	sort.Strings(posts)
	return posts, nil
}

func (r *Repo) collectPosts(tree *object.Tree, base string, out *[]string) error {
	for _, entry := range tree.Entries {
		if entry.Mode == filemode.Submodule {
			continue
		}
		p := entry.Name
		if base != "" {
			p = base + "/" + entry.Name
		}
		if strings.HasSuffix(entry.Name, r.cfg.PostSuffix) {
			*out = append(*out, p)
			continue // a post's contents are not themselves posts
		}
		if entry.Mode == filemode.Dir {
			sub, err := tree.Tree(entry.Name)
			if err != nil {
				return fmt.Errorf("failed to load subtree %s: %w", p, err)
			}
			if err := r.collectPosts(sub, p, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Posts lists posts carrying any of the given statuses, optionally under a
// prefix. With no statuses it lists published posts. Non-published statuses
// are discovered from the unmerged branches' diffs against the base.
func (r *Repo) Posts(prefix string, statuses ...PostStatus) ([]string, error) {
	if len(statuses) == 0 {
		statuses = []PostStatus{StatusPublished}
	}

	set := make(map[string]struct{})
	wantLocal := false
	for _, status := range statuses {
		if status == StatusPublished {
			published, err := r.PublishedPosts(prefix, "")
			if err != nil {
				return nil, err
			}
			for _, p := range published {
				set[p] = struct{}{}
			}
		} else {
			wantLocal = true
		}
	}

	if wantLocal {
		local, err := r.LocalPosts(nil)
		if err != nil {
			return nil, err
		}
		for branch, posts := range local {
			for _, p := range posts {
				if prefix != "" && !strings.HasPrefix(p, strings.Trim(prefix, "/")) {
					continue
				}
				status, _, err := r.StatusDetailed(p, branch)
				if err != nil {
					return nil, err
				}
				for _, want := range statuses {
					if status == want {
						set[p] = struct{}{}
						break
					}
				}
			}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
