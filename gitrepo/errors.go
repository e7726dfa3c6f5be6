package gitrepo

import "errors"

// Sentinel errors for the failure modes callers are expected to branch on.
// They are wrapped with path/branch context at the call sites, so check them
// with errors.Is.
var (
	// ErrPathNotFound means the repository path does not exist and
	// auto-creation was not requested.
	ErrPathNotFound = errors.New("repository path does not exist")

	// ErrInvalidRepository means the path exists but does not contain a
	// valid repository.
	ErrInvalidRepository = errors.New("path is not a valid repository")

	// ErrPostExists means a knowledge post already occupies the target path.
	ErrPostExists = errors.New("a knowledge post already exists at this path")

	// ErrPostNotFound means no branch owns the post and it is not published.
	ErrPostNotFound = errors.New("no such knowledge post")

	// ErrNoDraft means submission could not resolve a draft branch for the post.
	ErrNoDraft = errors.New("no draft in progress for this post")

	// ErrAmbiguousTarget means submission was invoked with neither a post
	// path nor a branch.
	ErrAmbiguousTarget = errors.New("a post path or branch must be specified")

	// ErrNoRemote means the repository has no remote to submit to.
	ErrNoRemote = errors.New("no remote repositories configured")

	// ErrRemoteUnreachable means the remote host failed the reachability
	// preflight.
	ErrRemoteUnreachable = errors.New("remote repository is unreachable")

	// ErrNoCommitMessage means no commit message was supplied and none could
	// be obtained interactively.
	ErrNoCommitMessage = errors.New("no commit message provided")

	// ErrNotImplemented marks extension points without a backend implementation.
	ErrNotImplemented = errors.New("not implemented")
)
