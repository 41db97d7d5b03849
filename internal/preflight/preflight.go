// Package preflight runs the repo-readiness checks every subrepo operation
// needs before it touches anything: a clean worktree (nothing to rewind
// to if a rebase has to stop mid-conflict), a real checked-out branch
// rather than a detached HEAD or one of the tool's own synthesised
// branches, and a Git binary new enough to support the plumbing the
// engine relies on. It composes internal/gitrepo (go-git reads) with
// internal/gitexec (git --version) the same way the engine does, so
// preflight never needs its own Git access layer.
package preflight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/woofgl/git-subrepo/internal/gitexec"
	"github.com/woofgl/git-subrepo/internal/gitrepo"
)

// MinGitMajor/MinGitMinor is the floor Git version the plumbing this tool
// shells out to requires (Git >= 1.7).
const (
	MinGitMajor = 1
	MinGitMinor = 7
)

// Result carries the repository handles preflight already opened, so
// callers don't re-open them.
type Result struct {
	Repo         *gitrepo.Repo
	CurrentBranch string
	HeadCommit   string
}

// Check runs every repo-readiness check and returns the opened repository
// plus the current branch/HEAD, or the first violated check as an error.
func Check(dir string) (*Result, error) {
	if err := CheckGitVersion(gitexec.New(dir)); err != nil {
		return nil, err
	}

	ok, err := gitrepo.TopLevel(dir)
	if err != nil {
		return nil, fmt.Errorf("git-subrepo: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("git-subrepo: must be run from the top level of a Git working tree")
	}

	repo, err := gitrepo.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("git-subrepo: %w", err)
	}

	clean, err := repo.IsClean()
	if err != nil {
		return nil, fmt.Errorf("git-subrepo: %w", err)
	}
	if !clean {
		return nil, fmt.Errorf("git-subrepo: working tree has uncommitted changes; commit or stash them first")
	}

	branch, onBranch, err := repo.HeadBranch()
	if err != nil {
		return nil, fmt.Errorf("git-subrepo: %w", err)
	}
	if !onBranch {
		return nil, fmt.Errorf("git-subrepo: HEAD is detached; check out a branch first")
	}
	if IsSynthesisedBranch(branch) {
		return nil, fmt.Errorf("git-subrepo: refusing to run on synthesised branch %q; check out your real branch first", branch)
	}

	head, err := repo.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("git-subrepo: %w", err)
	}

	return &Result{Repo: repo, CurrentBranch: branch, HeadCommit: head}, nil
}

// IsSynthesisedBranch reports whether name is one of the branches the
// engine synthesises itself ("subrepo/*" or "subrepo-push/*"), which a
// user must never be on when invoking a command.
func IsSynthesisedBranch(name string) bool {
	return strings.HasPrefix(name, "subrepo/") || strings.HasPrefix(name, "subrepo-push/")
}

// CheckGitVersion fails if the git binary on PATH reports a version older
// than MinGitMajor.MinGitMinor.
func CheckGitVersion(r *gitexec.Runner) error {
	v, err := r.Version()
	if err != nil {
		return fmt.Errorf("git-subrepo: git does not appear to be installed: %w", err)
	}
	major, minor, ok := parseMajorMinor(v)
	if !ok {
		// Unparseable banners (custom builds) are let through rather than
		// blocking the user on a cosmetic mismatch.
		return nil
	}
	if major < MinGitMajor || (major == MinGitMajor && minor < MinGitMinor) {
		return fmt.Errorf("git-subrepo: git %s is too old; git >= %d.%d is required", v, MinGitMajor, MinGitMinor)
	}
	return nil
}

func parseMajorMinor(v string) (major, minor int, ok bool) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}
