package subrepo

import (
	"fmt"

	"github.com/woofgl/git-subrepo/internal/gitrepo"
	"github.com/woofgl/git-subrepo/internal/message"
	"github.com/woofgl/git-subrepo/internal/refns"
)

// PullInput carries pull's user-facing options. Remote/Branch
// always override the recorded values for this one pull; Update additionally
// persists the override into .gitrepo so later operations pick it up too.
type PullInput struct {
	Subdir string
	Remote string
	Branch string
	Update bool
}

// Pull fetches upstream, replays any local mainline
// changes to <subdir> on top of it (via the same rewrite Branch uses), and
// commits the merged result. currentBranch is the branch the caller's
// preflight check found checked out, so Pull can return to it after a
// rebase moves HEAD.
func (e *Engine) Pull(in PullInput, currentBranch string, fields message.Fields) (string, error) {
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
	persistRemote, persistBranch := rec.Remote, rec.Branch
	if in.Update {
		persistRemote, persistBranch = remote, branch
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

	if upstreamHead == rec.Commit {
		return "", ErrUpToDate
	}

	branchName := ns.SubrepoBranch()
	if e.Repo.BranchExists(branchName) {
		if err := e.Git.DeleteBranch(branchName); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	// branchName was just deleted above if it existed, so synthesizeBranch
	// always rebuilds here; noop can never be true for this call.
	_, _, noNew, err := e.synthesizeBranch(in.Subdir, branchName, false)
	if err != nil {
		return "", err
	}

	commitRef := upstreamHead
	if noNew {
		if err := e.Repo.UpdateRef("refs/heads/"+branchName, upstreamHead); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	} else {
		if out, rerr := e.Git.RebaseOnto(upstreamHead, "", branchName); rerr != nil {
			return "", &ConflictError{
				Err:         ErrPullConflict,
				Subdir:      in.Subdir,
				Branch:      currentBranch,
				SynthBranch: branchName,
				Detail:      out,
			}
		}
		rebasedTip, rerr := e.Repo.RevParse(branchName)
		if rerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", rerr)
		}
		if cerr := e.Git.CheckoutBranch(currentBranch); cerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", cerr)
		}
		commitRef = rebasedTip
	}

	fields.Command = "pull"
	newHead, err := e.Commit(CommitInput{
		Subdir:    in.Subdir,
		CommitRef: commitRef,
		Remote:    persistRemote,
		Branch:    persistBranch,
		Force:     true,
	}, fields)
	if err != nil {
		return "", err
	}

	if err := e.Repo.UpdateRef(ns.Ref(refns.Pull), newHead); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	return newHead, nil
}
