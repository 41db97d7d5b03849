package subrepo

import (
	"fmt"

	"github.com/woofgl/git-subrepo/internal/refns"
)

// Clean tears down the synthesised branches a previous operation left
// behind: subrepo/<subdir>, and subrepo-push/<subdir> from an aborted push
// (the recovery path ErrStalePushBranch points a caller at), plus the
// convenience remote. With force it additionally deletes the whole
// refs/subrepo/<subdir>/* namespace, forcing the next operation to rebuild
// everything from <subdir>/.gitrepo.
func (e *Engine) Clean(subdir string, force bool) error {
	ns := refns.New(subdir)

	if err := e.deleteBranchIfExists(ns.PushBranch()); err != nil {
		return err
	}
	if err := e.deleteBranchIfExists(ns.SubrepoBranch()); err != nil {
		return err
	}
	if err := e.Repo.RemoveRemote(ns.Remote()); err != nil {
		return fmt.Errorf("git-subrepo: %w", err)
	}

	if !force {
		return nil
	}

	for _, kind := range refns.All {
		if err := e.Repo.DeleteRef(ns.Ref(kind)); err != nil {
			return fmt.Errorf("git-subrepo: %w", err)
		}
	}
	return nil
}

func (e *Engine) deleteBranchIfExists(name string) error {
	if !e.Repo.BranchExists(name) {
		return nil
	}
	if err := e.Git.DeleteBranch(name); err != nil {
		return fmt.Errorf("git-subrepo: %w", err)
	}
	return nil
}
