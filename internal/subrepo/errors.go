package subrepo

import "errors"

// Sentinel errors the CLI layer maps to exit codes and message templates
// instead of string-matching: a small typed error set rather than ad-hoc
// wrapped strings.
var (
	// ErrUpToDate signals "nothing to do" (CODE=-1): clone --force or pull
	// found the upstream head unchanged.
	ErrUpToDate = errors.New("up to date")

	// ErrNoNewCommits signals CODE=-1 for push/branch: the rewrite produced
	// no commits beyond the pull base.
	ErrNoNewCommits = errors.New("no new commits")

	// ErrPullConflict signals CODE=1: the pull rebase stopped with
	// conflicts and the working tree is left mid-rebase for the user.
	ErrPullConflict = errors.New("pull rebase conflict")

	// ErrPushConflict signals CODE=2: the push rebase stopped with
	// conflicts and the working tree is left mid-rebase for the user.
	ErrPushConflict = errors.New("push rebase conflict")

	// ErrNotAncestor signals an upstream-ancestry violation: the commit
	// being committed/pushed does not contain the fetched upstream head,
	// and --force was not given.
	ErrNotAncestor = errors.New("fetched upstream head is not an ancestor of the given commit; use --force to override")

	// ErrStalePushBranch signals a leftover subrepo-push/<subdir> branch
	// from a previously aborted push.
	ErrStalePushBranch = errors.New("subrepo-push branch already exists from a previous aborted push; resolve or run clean first")

	// ErrUnknownSubdir signals that <subdir>/.gitrepo does not exist.
	ErrUnknownSubdir = errors.New("not a subrepo: missing .gitrepo")

	// ErrNonEmptySubdir signals clone's precondition that <subdir> either
	// not exist or be empty, without --force.
	ErrNonEmptySubdir = errors.New("target directory already exists and is not empty")

	// ErrBranchExists is no longer returned by Branch; an already-built
	// subrepo/<subdir> without --force is a successful no-op instead. Kept
	// for any caller still matching on it directly.
	ErrBranchExists = errors.New("subrepo branch already exists; use --force to rebuild it")
)

// ConflictError wraps ErrPullConflict/ErrPushConflict with the context a
// caller needs to print a recovery script: which subdir it happened in,
// the branch the user was on before the rebase moved HEAD, the
// synthesised branch left mid-rebase, and the rebase's own combined
// output.
type ConflictError struct {
	Err         error
	Subdir      string
	Branch      string
	SynthBranch string
	Detail      string
}

func (e *ConflictError) Error() string {
	return e.Err.Error() + ": " + e.Subdir + ": " + e.Detail
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Code maps a sentinel (or nil) to the CLI's exit-code taxonomy.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUpToDate), errors.Is(err, ErrNoNewCommits):
		return -1
	case errors.Is(err, ErrPullConflict):
		return 1
	case errors.Is(err, ErrPushConflict):
		return 2
	default:
		return 1
	}
}
