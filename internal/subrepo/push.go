package subrepo

import (
	"fmt"

	"github.com/woofgl/git-subrepo/internal/gitrepo"
	"github.com/woofgl/git-subrepo/internal/refns"
)

// PushInput carries push's user-facing options. Remote/Branch
// always override the recorded push target for this one push; Update
// additionally persists the override into .gitrepo.
type PushInput struct {
	Subdir     string
	BranchName string // explicit `git subrepo push <subdir> <branch-name>` source; overrides the synthesised rebuild
	Remote     string
	Branch     string
	Update     bool
	Force      bool
}

// Push rebuilds (or takes an explicit) upstream-shaped
// branch, rebases it onto the freshly fetched upstream head, and pushes it.
// currentBranch is restored after any rebase moves HEAD.
func (e *Engine) Push(in PushInput, currentBranch string) (string, error) {
	rec, err := gitrepo.Load(in.Subdir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownSubdir, in.Subdir)
	}

	remote, branch := rec.Remote, rec.Branch
	if in.Remote != "" {
		remote = in.Remote
	}
	if in.Branch != "" {
		branch = in.Branch
	}

	upstreamHead, err := e.Git.FetchBranch(remote, branch)
	if err != nil {
		return "", fmt.Errorf("git-subrepo: failed to fetch %s %s: %w", remote, branch, err)
	}

	ns := refns.New(in.Subdir)
	if err := e.Repo.UpdateRef(ns.Ref(refns.Fetch), upstreamHead); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Repo.SetRemote(ns.Remote(), remote); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	pushBranchName := ns.PushBranch()
	if e.Repo.BranchExists(pushBranchName) {
		return "", ErrStalePushBranch
	}

	var candidate string
	usingTempBranch := in.BranchName == ""

	if !usingTempBranch {
		if !e.Repo.BranchExists(in.BranchName) {
			return "", fmt.Errorf("git-subrepo: branch %q does not exist", in.BranchName)
		}
		candidate, err = e.Repo.RevParse(in.BranchName)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	} else {
		if e.Repo.BranchExists(pushBranchName) {
			return "", ErrStalePushBranch
		}
		// pushBranchName was just confirmed absent above, so synthesizeBranch
		// always rebuilds here; noop can never be true for this call.
		_, _, noNew, serr := e.synthesizeBranch(in.Subdir, pushBranchName, false)
		if serr != nil {
			return "", serr
		}
		if noNew {
			return "", ErrNoNewCommits
		}

		if out, rerr := e.Git.RebaseOnto(upstreamHead, "", pushBranchName); rerr != nil {
			return "", &ConflictError{
				Err:         ErrPushConflict,
				Subdir:      in.Subdir,
				Branch:      currentBranch,
				SynthBranch: pushBranchName,
				Detail:      out,
			}
		}
		candidate, err = e.Repo.RevParse(pushBranchName)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
		if cerr := e.Git.CheckoutBranch(currentBranch); cerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", cerr)
		}
	}

	if !in.Force {
		ok, aerr := e.Git.IsAncestor(upstreamHead, candidate)
		if aerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", aerr)
		}
		if !ok {
			return "", ErrNotAncestor
		}
	}

	if err := e.Git.Push(remote, candidate, branch, in.Force); err != nil {
		return "", fmt.Errorf("git-subrepo: push to %s %s failed: %w", remote, branch, err)
	}

	if err := e.Repo.UpdateRef(ns.Ref(refns.Push), candidate); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	if usingTempBranch {
		if err := e.Git.DeleteBranch(pushBranchName); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	if in.Update && (remote != rec.Remote || branch != rec.Branch) {
		rec.Remote, rec.Branch = remote, branch
		if err := gitrepo.Save(in.Subdir, rec); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	return candidate, nil
}
