// Package subrepo implements the history-rewriting protocol and the eight
// porcelain operations built on top of it: clone, fetch, branch, commit,
// pull, push, status, clean. It composes internal/gitrepo (go-git
// reads/ref writes) and internal/gitexec (subprocess plumbing) directly
// inside one Engine, holding both handles side by side rather than behind
// an interface.
package subrepo

import (
	"errors"
	"fmt"

	"github.com/woofgl/git-subrepo/internal/gitexec"
	"github.com/woofgl/git-subrepo/internal/gitrepo"
	"github.com/woofgl/git-subrepo/internal/message"
	"github.com/woofgl/git-subrepo/internal/refns"
)

// Engine runs subrepo operations against one host repository.
type Engine struct {
	Dir     string
	Repo    *gitrepo.Repo
	Git     *gitexec.Runner
	Version string // this tool's own version, stamped into .gitrepo's cmdver and commit messages
}

// New builds an Engine rooted at dir, reusing an already-opened Repo (as
// preflight.Check returns).
func New(dir string, repo *gitrepo.Repo, version string) *Engine {
	return &Engine{Dir: dir, Repo: repo, Git: gitexec.New(dir), Version: version}
}

// CommitInput carries the pieces Commit needs beyond what it can derive:
// the source ref to squash and the remote/branch identity to stamp into
// .gitrepo (clone and pull pass these; when Remote or Branch is blank,
// the existing record's value is used instead).
type CommitInput struct {
	Subdir    string
	CommitRef string // defaults to the subrepo/<subdir> branch when blank
	Remote    string
	Branch    string
	Force     bool
}

// Commit squashes CommitRef's tree into <subdir>,
// records provenance in .gitrepo, and creates a single mainline commit.
func (e *Engine) Commit(in CommitInput, fields message.Fields) (newHead string, err error) {
	subdir := in.Subdir
	ns := refns.New(subdir)

	commitRef := in.CommitRef
	if commitRef == "" {
		commitRef = ns.SubrepoBranch()
	}
	resolved, err := e.Repo.RevParse(commitRef)
	if err != nil {
		return "", fmt.Errorf("git-subrepo: failed to resolve %s: %w", commitRef, err)
	}

	remote, branch := in.Remote, in.Branch
	var parent string
	if gitrepo.Exists(subdir) && (remote == "" || branch == "") {
		existing, lerr := gitrepo.Load(subdir)
		if lerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", lerr)
		}
		if remote == "" {
			remote = existing.Remote
		}
		if branch == "" {
			branch = existing.Branch
		}
	}

	upstreamHead, hasFetch := e.Repo.ReadRef(ns.Ref(refns.Fetch))
	if !hasFetch {
		upstreamHead = resolved
	}
	if hasFetch && !in.Force {
		ok, aerr := e.Git.IsAncestor(upstreamHead, resolved)
		if aerr != nil {
			return "", fmt.Errorf("git-subrepo: %w", aerr)
		}
		if !ok {
			return "", ErrNotAncestor
		}
	}

	hasHead := e.Repo.HasHead()
	if hasHead {
		parent, err = e.Repo.HeadCommit()
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	if err := clearDirContents(subdir); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Git.ResetWorktreeHard(subdir, resolved); err != nil {
		return "", fmt.Errorf("git-subrepo: failed to populate %s: %w", subdir, err)
	}
	if hasHead {
		if err := e.Git.ResetMixed(parent); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	} else {
		if err := e.Git.RemoveIndexFile(); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	rec := &gitrepo.Record{
		Remote: remote,
		Branch: branch,
		Commit: upstreamHead,
		Parent: parent,
		CmdVer: e.Version,
	}
	if err := gitrepo.Save(subdir, rec); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Git.AddPath(subdir); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	fields.Subdir = subdir
	fields.MergedSHA = ShortSHA(resolved)
	fields.Remote = remote
	fields.Branch = branch
	fields.UpstreamSHA = ShortSHA(rec.Commit)
	fields.ToolVersion = e.Version
	msg, err := message.Build(fields)
	if err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	tree, err := e.Git.WriteTree()
	if err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if hasHead {
		newHead, err = e.Git.CommitTree(tree, msg, parent)
	} else {
		newHead, err = e.Git.CommitTree(tree, msg)
	}
	if err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Git.ResetHard(newHead); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	if err := e.Repo.UpdateRef(ns.Ref(refns.Commit), resolved); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	return newHead, nil
}

// CloneInput carries clone's user-facing options.
type CloneInput struct {
	URL    string
	Subdir string
	Branch string
	Force  bool
}

// Clone fetches url's default (or given) branch and
// materialises it as a new subdirectory with its own .gitrepo record.
func (e *Engine) Clone(in CloneInput, commandArgs string) (string, error) {
	subdir := in.Subdir
	if subdir == "" {
		derived, err := DeriveSubdir(in.URL)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
		subdir = derived
	}

	var existing *gitrepo.Record
	if gitrepo.Exists(subdir) {
		if !in.Force {
			return "", ErrNonEmptySubdir
		}
		rec, err := gitrepo.Load(subdir)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
		existing = rec
	} else {
		empty, err := dirEmptyOrAbsent(subdir)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
		if !empty && !in.Force {
			return "", ErrNonEmptySubdir
		}
	}

	branch := in.Branch
	if branch == "" {
		def, err := e.Git.LsRemoteHeadBranch(in.URL)
		if err != nil {
			return "", fmt.Errorf("git-subrepo: could not determine default branch of %s: %w", in.URL, err)
		}
		branch = def
	}

	upstreamHead, err := e.Git.FetchBranch(in.URL, branch)
	if err != nil {
		return "", fmt.Errorf("git-subrepo: failed to fetch %s %s: %w", in.URL, branch, err)
	}

	ns := refns.New(subdir)
	if err := e.Repo.UpdateRef(ns.Ref(refns.Fetch), upstreamHead); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Repo.SetRemote(ns.Remote(), in.URL); err != nil {
		return "", fmt.Errorf("git-subrepo: %w", err)
	}

	if existing != nil {
		if existing.Commit == upstreamHead {
			return "", ErrUpToDate
		}
		if err := clearDirContents(subdir); err != nil {
			return "", fmt.Errorf("git-subrepo: %w", err)
		}
	}

	return e.Commit(CommitInput{
		Subdir:    subdir,
		CommitRef: upstreamHead,
		Remote:    in.URL,
		Branch:    branch,
		Force:     true,
	}, message.Fields{Command: "clone", OriginalArgs: commandArgs})
}

// FetchInput carries fetch's user-facing options.
type FetchInput struct {
	Subdir string
	Remote string // overrides the recorded remote for this fetch only
	Branch string // overrides the recorded branch for this fetch only
}

// Fetch updates refs/subrepo/<subdir>/fetch to the
// upstream branch's current head, without touching the worktree.
func (e *Engine) Fetch(in FetchInput) (upstreamHead string, err error) {
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

	upstreamHead, err = e.Git.FetchBranch(remote, branch)
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
	return upstreamHead, nil
}

// synthesizeBranch runs the history-rewrite over a named target branch
// (subrepo/<subdir> for Branch, subrepo-push/<subdir> for Push), sharing
// the delete-then-rebuild-then-restore-HEAD bookkeeping both callers need.
//
// noop reports that branchName already existed and force was not given:
// the caller should treat this as a successful no-op rather than an error.
// noNew reports that the rewrite ran but produced no commits beyond the
// pull-base squash.
func (e *Engine) synthesizeBranch(subdir, branchName string, force bool) (tip string, noop, noNew bool, err error) {
	if e.Repo.BranchExists(branchName) {
		if !force {
			existing, rerr := e.Repo.RevParse(branchName)
			if rerr != nil {
				return "", false, false, fmt.Errorf("git-subrepo: %w", rerr)
			}
			return existing, true, false, nil
		}
		if err := e.Git.DeleteBranch(branchName); err != nil {
			return "", false, false, fmt.Errorf("git-subrepo: %w", err)
		}
	}

	rec, err := gitrepo.Load(subdir)
	if err != nil {
		return "", false, false, fmt.Errorf("%w: %s", ErrUnknownSubdir, subdir)
	}
	parent := rec.EffectiveParent()
	if parent == "" {
		return "", false, false, fmt.Errorf("git-subrepo: %s has no recorded parent commit; has it been cloned or committed?", subdir)
	}

	headBefore, err := e.Repo.HeadCommit()
	if err != nil {
		return "", false, false, fmt.Errorf("git-subrepo: %w", err)
	}

	tip, err = e.Git.RewriteBranch(parent, headBefore, subdir)
	if err != nil {
		if errors.Is(err, gitexec.ErrNoNewCommits) {
			if rerr := e.Git.ResetHard(headBefore); rerr != nil {
				return "", false, false, fmt.Errorf("git-subrepo: %w", rerr)
			}
			return "", false, true, nil
		}
		return "", false, false, fmt.Errorf("git-subrepo: %w", err)
	}

	if err := e.Repo.UpdateRef("refs/heads/"+branchName, tip); err != nil {
		return "", false, false, fmt.Errorf("git-subrepo: %w", err)
	}
	if err := e.Git.ResetHard(headBefore); err != nil {
		return "", false, false, fmt.Errorf("git-subrepo: %w", err)
	}
	return tip, false, false, nil
}

// Branch (re)builds subrepo/<subdir> from the upstream-equivalent history
// recorded since <subdir>'s parent commit. If the branch already exists
// and force is false, it is left untouched and Branch succeeds without
// doing any work.
func (e *Engine) Branch(subdir string, force bool) (tip string, err error) {
	ns := refns.New(subdir)
	tip, noop, noNew, err := e.synthesizeBranch(subdir, ns.SubrepoBranch(), force)
	if err != nil {
		return "", err
	}
	if noop {
		return tip, nil
	}
	if noNew {
		return "", ErrNoNewCommits
	}
	if uerr := e.Repo.UpdateRef(ns.Ref(refns.Branch), tip); uerr != nil {
		return "", fmt.Errorf("git-subrepo: %w", uerr)
	}
	return tip, nil
}
