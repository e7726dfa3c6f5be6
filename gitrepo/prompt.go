package gitrepo

import "fmt"

// Prompter supplies the interactive decisions the add/submit workflow
// occasionally needs. Callers that have a terminal can plug in a real
// prompter; everything else gets HeadlessPrompter, which resolves
// deterministically and never blocks.
type Prompter interface {
	// SelectBranch picks among multiple branches owning the same post.
	// Returns an index into branches.
	SelectBranch(post string, branches []string) (int, error)

	// CommitMessage supplies a commit message when none was given.
	CommitMessage(post string) (string, error)

	// UseCurrentBranch decides whether to keep working on the branch that is
	// already checked out instead of the requested one.
	UseCurrentBranch(current, requested string) (bool, error)
}

// HeadlessPrompter is the non-interactive default: first branch in listing
// order, no commit message, never adopt an unexpected branch.
type HeadlessPrompter struct{}

func (HeadlessPrompter) SelectBranch(post string, branches []string) (int, error) {
	return 0, nil
}

func (HeadlessPrompter) CommitMessage(post string) (string, error) {
	return "", fmt.Errorf("%w: post %s", ErrNoCommitMessage, post)
}

func (HeadlessPrompter) UseCurrentBranch(current, requested string) (bool, error) {
	return false, nil
}

var _ Prompter = HeadlessPrompter{}
