package subrepo

import (
	"fmt"

	"github.com/woofgl/git-subrepo/internal/gitrepo"
	"github.com/woofgl/git-subrepo/internal/refns"
)

// StatusInput carries status's user-facing options.
type StatusInput struct {
	Subdirs []string // explicit subdirs; empty means auto-discover
	Fetch   bool     // refresh refs/subrepo/<subdir>/fetch before reporting
}

// SubrepoState is one subrepo's reported status line.
type SubrepoState struct {
	Subdir    string
	Remote    string
	Branch    string
	Commit    string
	Parent    string
	CmdVer    string
	FetchHead string // "" if never fetched
	UpToDate  bool
}

// Status reports each discovered (or named) subrepo's
// recorded provenance alongside its last-known (or freshly fetched)
// upstream head.
func (e *Engine) Status(in StatusInput) ([]SubrepoState, error) {
	subdirs := in.Subdirs
	if len(subdirs) == 0 {
		discovered, err := Discover(e.Dir)
		if err != nil {
			return nil, fmt.Errorf("git-subrepo: %w", err)
		}
		subdirs = discovered
	}

	out := make([]SubrepoState, 0, len(subdirs))
	for _, subdir := range subdirs {
		rec, err := gitrepo.Load(subdir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSubdir, subdir)
		}
		ns := refns.New(subdir)

		st := SubrepoState{
			Subdir: subdir,
			Remote: rec.Remote,
			Branch: rec.Branch,
			Commit: rec.Commit,
			Parent: rec.EffectiveParent(),
			CmdVer: rec.CmdVer,
		}

		if in.Fetch {
			head, ferr := e.Fetch(FetchInput{Subdir: subdir})
			if ferr != nil {
				return nil, ferr
			}
			st.FetchHead = head
		} else if head, ok := e.Repo.ReadRef(ns.Ref(refns.Fetch)); ok {
			st.FetchHead = head
		}

		st.UpToDate = st.FetchHead != "" && st.FetchHead == st.Commit
		out = append(out, st)
	}
	return out, nil
}
