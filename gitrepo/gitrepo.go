// Package gitrepo maps knowledge posts onto branches of a git repository.
//
// A post's lifecycle status is never stored: it is derived from branch
// topology and the branch's relationship to the remote. The package is
// organized into focused modules:
//   - gitrepo.go: Repo handle, open/bootstrap, repository state
//   - branch.go: branch-to-post resolution and checkout
//   - status.go: status derivation (published/submitted/draft, ahead/behind)
//   - submit.go: add/commit workflow with rollback, push with preflight
//   - tree.go: published post discovery from a commit tree
//   - remote.go: remote URL parsing and reachability probing
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/FooBarQuaxx/knowledge-repo/config"
	"github.com/FooBarQuaxx/knowledge-repo/logger"
)

// resourcesDir is where the shared resource subtree is materialized at bootstrap.
const resourcesDir = ".resources"

const readmeScaffold = `# Knowledge Repository

This repository stores knowledge posts: directory-scoped documents whose
names end in the post suffix (` + "`.kp`" + ` by default).

Posts are drafted on branches named after the post path, submitted by
pushing those branches to the remote, and published by merging into the
base branch.
`

// Repo is an opened knowledge repository: a validated filesystem path bound
// to a git handle. All operations share the repository's working tree and
// index, so callers must serialize access per repository path.
type Repo struct {
	path     string
	cfg      *config.Config
	repo     *git.Repository
	prompter Prompter

	// The published tree does not change during a session, so membership of
	// the base branch's post set is computed once.
	publishedOnce sync.Once
	published     map[string]struct{}
	publishedErr  error
}

// Options controls how a repository is opened.
type Options struct {
	// AutoCreate bootstraps a new repository when the path does not exist.
	AutoCreate bool
	// Config overrides the configuration loaded from the repository root.
	Config *config.Config
	// Prompter handles interactive decisions. Defaults to HeadlessPrompter.
	Prompter Prompter
}

// Open validates path and opens the repository there.
//
// A missing path fails with ErrPathNotFound unless opts.AutoCreate is set,
// in which case the path is bootstrapped: repository initialized, scaffold
// files written and committed, and the shared resource subtree attached when
// configured. Bootstrap is all-or-nothing — on any failure the partially
// created path is removed before the error is returned.
func Open(path string, opts Options) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	cfg := opts.Config

	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		if !opts.AutoCreate {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, abs)
		}
		if cfg == nil {
			cfg = config.Default()
		}
		if err := bootstrap(abs, cfg); err != nil {
			return nil, fmt.Errorf("failed to bootstrap repository at %s: %w", abs, err)
		}
	}

	gr, err := git.PlainOpen(abs)
	if err != nil {
		logger.WithComponent("gitrepo").Error("failed to open repository", "path", abs, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidRepository, abs)
	}

	if cfg == nil {
		cfg, err = config.Load(abs)
		if err != nil {
			return nil, err
		}
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = HeadlessPrompter{}
	}

	return &Repo{path: abs, cfg: cfg, repo: gr, prompter: prompter}, nil
}

// bootstrap initializes a brand-new knowledge repository at path.
func bootstrap(path string, cfg *config.Config) (err error) {
	log := logger.WithComponent("gitrepo")
	log.Info("bootstrapping new knowledge repository", "path", path)

	defer func() {
		if err != nil {
			// All-or-nothing: a half-built repository must not survive.
			if rmErr := os.RemoveAll(path); rmErr != nil {
				log.Warn("failed to remove partial repository", "path", path, "error", rmErr)
			}
		}
	}()

	gr, err := git.PlainInit(path, false)
	if err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}

	// git init points HEAD at master; honor a configured base branch instead.
	if cfg.BaseBranch != "master" {
		head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(cfg.BaseBranch))
		if err = gr.Storer.SetReference(head); err != nil {
			return fmt.Errorf("failed to set HEAD to %s: %w", cfg.BaseBranch, err)
		}
	}

	if err = cfg.Save(path); err != nil {
		return err
	}
	if err = os.WriteFile(filepath.Join(path, "README.md"), []byte(readmeScaffold), 0644); err != nil {
		return fmt.Errorf("failed to write README scaffold: %w", err)
	}

	scaffold := []string{config.FileName, "README.md"}
	if cfg.ResourcesURL != "" {
		if err = attachResources(path, cfg); err != nil {
			return err
		}
		scaffold = append(scaffold, ".gitmodules")
	}

	wt, err := gr.Worktree()
	if err != nil {
		return err
	}
	for _, f := range scaffold {
		if _, err = wt.Add(f); err != nil {
			return fmt.Errorf("failed to stage %s: %w", f, err)
		}
	}
	if _, err = wt.Commit("Initial commit.", &git.CommitOptions{Author: defaultSignature()}); err != nil {
		return fmt.Errorf("failed to commit scaffold: %w", err)
	}

	log.Info("repository bootstrapped", "path", path)
	return nil
}

// attachResources records the shared resource subtree in .gitmodules and
// materializes it at the pinned branch.
func attachResources(path string, cfg *config.Config) error {
	modules := fmt.Sprintf("[submodule %q]\n\tpath = %s\n\turl = %s\n\tbranch = %s\n",
		"knowledge-repo", resourcesDir, cfg.ResourcesURL, cfg.ResourcesBranch)
	if err := os.WriteFile(filepath.Join(path, ".gitmodules"), []byte(modules), 0644); err != nil {
		return fmt.Errorf("failed to write .gitmodules: %w", err)
	}

	_, err := git.PlainClone(filepath.Join(path, resourcesDir), false, &git.CloneOptions{
		URL:           cfg.ResourcesURL,
		ReferenceName: plumbing.NewBranchReferenceName(cfg.ResourcesBranch),
		SingleBranch:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to clone resources from %s: %w", cfg.ResourcesURL, err)
	}
	return nil
}

// Path returns the absolute repository path.
func (r *Repo) Path() string {
	return r.path
}

// Config returns the repository configuration.
func (r *Repo) Config() *config.Config {
	return r.cfg
}

// Revision returns the hash of the current head commit.
func (r *Repo) Revision() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the currently checked-out branch.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}
	return head.Name().Short(), nil
}

// LocalBranches returns the short names of all local branches, sorted.
func (r *Repo) LocalBranches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Remotes returns the names of all configured remotes.
func (r *Repo) Remotes() ([]string, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	names := make([]string, 0, len(remotes))
	for _, rem := range remotes {
		names = append(names, rem.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repo) hasRemote() bool {
	remotes, err := r.repo.Remotes()
	return err == nil && len(remotes) > 0
}

// ReadAtRef returns the bytes of a file as committed at ref. An empty ref
// reads from the base branch.
func (r *Repo) ReadAtRef(path, ref string) ([]byte, error) {
	if ref == "" {
		ref = r.cfg.BaseBranch
	}
	c, err := r.commitAt(ref)
	if err != nil {
		return nil, err
	}
	f, err := c.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, ref, err)
	}
	return []byte(contents), nil
}

// commitAt resolves a revision expression (branch name, hash, etc) to its commit.
func (r *Repo) commitAt(ref string) (*object.Commit, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ref %s: %w", ref, err)
	}
	c, err := r.repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", h, err)
	}
	return c, nil
}

// WorktreeStatus summarizes the repository's mutable state: the active
// branch and files that differ from the last commit.
type WorktreeStatus struct {
	Branch       string
	ChangedFiles []string
}

// Status returns the active branch and the list of changed files.
func (r *Repo) Status() (*WorktreeStatus, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var files []string
	for path, fs := range st {
		if fs.Worktree == git.Unmodified && fs.Staging == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	return &WorktreeStatus{Branch: branch, ChangedFiles: files}, nil
}

// StatusMessage renders Status for humans.
func (r *Repo) StatusMessage() (string, error) {
	st, err := r.Status()
	if err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Currently checked out on the `%s` branch.", st.Branch)
	if len(st.ChangedFiles) > 0 {
		msg += "\nFiles modified:\n\t- " + strings.Join(st.ChangedFiles, "\n\t- ")
	}
	return msg, nil
}

// Update fetches and pulls the base branch from the remote, restoring the
// previously checked-out branch afterwards. With no remote configured it is
// a no-op, and an unreachable remote degrades to local-only operation with
// a warning rather than an error.
func (r *Repo) Update(ctx context.Context) error {
	log := logger.WithComponent("gitrepo")

	if !r.hasRemote() {
		return nil
	}
	if !r.RemoteAvailable() {
		log.Warn("cannot connect to remote repository, continuing locally with potentially stale posts",
			"remote", r.remoteURL())
		return nil
	}

	log.Info("fetching updates to the knowledge repository")
	err := r.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: r.cfg.RemoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch from %s: %w", r.cfg.RemoteName, err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	if current != r.cfg.BaseBranch {
		if _, err := r.Checkout(r.cfg.BaseBranch, CheckoutOptions{}); err != nil {
			return err
		}
		defer func() {
			if _, err := r.Checkout(current, CheckoutOptions{}); err != nil {
				log.Warn("failed to restore branch after update", "branch", current, "error", err)
			}
		}()
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    r.cfg.RemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.BaseBranch),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull %s: %w", r.cfg.BaseBranch, err)
	}
	return nil
}

// SetActiveDraft checks out the branch owning the given post.
func (r *Repo) SetActiveDraft(post string) error {
	branch, err := r.BranchForPost(post, false)
	if err != nil {
		return err
	}
	_, err = r.Checkout(branch, CheckoutOptions{})
	return err
}

// PostExists reports whether a post exists in any form: on disk in the
// worktree, owned by a branch, or published.
func (r *Repo) PostExists(post string) bool {
	if info, err := os.Stat(filepath.Join(r.path, filepath.FromSlash(post))); err == nil && info.IsDir() {
		return true
	}
	_, err := r.BranchForPost(post, false)
	return err == nil
}

// Publish is an extension point for merge-on-accept deployments; this
// backend publishes by merging into the base branch out of band.
func (r *Repo) Publish(post string) error {
	return fmt.Errorf("publish %s: %w", post, ErrNotImplemented)
}

// Unpublish is the reverse extension point of Publish.
func (r *Repo) Unpublish(post string) error {
	return fmt.Errorf("unpublish %s: %w", post, ErrNotImplemented)
}

// Accept approves a post for publishing. Branch-backed repositories carry
// approval in the review flow of the remote, so this is a no-op.
func (r *Repo) Accept(post string) error {
	return nil
}

// signature builds the commit author, preferring the user's git identity.
func (r *Repo) signature() *object.Signature {
	if cfg, err := r.repo.ConfigScoped(gitcfg.SystemScope); err == nil && cfg.User.Name != "" {
		return &object.Signature{Name: cfg.User.Name, Email: cfg.User.Email, When: time.Now()}
	}
	return defaultSignature()
}

func defaultSignature() *object.Signature {
	return &object.Signature{
		Name:  "knowledge-repo",
		Email: "knowledge-repo@localhost",
		When:  time.Now(),
	}
}
