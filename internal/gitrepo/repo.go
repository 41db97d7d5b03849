// Package gitrepo wraps the pure-Go parts of Git plumbing that go-git
// exposes as a stable API: repository lifecycle, worktree status, HEAD and
// branch inspection, reference read/write/delete/listing, and remote
// configuration. It is the go-git half of the Git driver, leaving the
// plumbing go-git doesn't expose (rebase, commit-tree, and the rest) to
// internal/gitexec.
package gitrepo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo wraps an open mainline repository.
type Repo struct {
	repo *git.Repository
	path string
}

// Open opens the repository rooted at path (normally ".").
func Open(path string) (*Repo, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return &Repo{repo: r, path: path}, nil
}

// TopLevel reports whether path is the top level of its working tree, i.e.
// the directory that directly contains ".git".
func TopLevel(path string) (bool, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe repository: %w", err)
	}
	_ = r
	return true, nil
}

// IsClean reports whether the worktree has no staged or unstaged changes.
func (r *Repo) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// HeadBranch returns the short name of the branch HEAD points to. It
// returns ok=false if HEAD is detached (not a symbolic ref to
// refs/heads/*).
func (r *Repo) HeadBranch() (name string, ok bool, err error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", false, nil
	}
	return head.Name().Short(), true, nil
}

// HeadCommit returns the full hash HEAD resolves to.
func (r *Repo) HeadCommit() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// HasHead reports whether the repository has any commits at all (a freshly
// `git init`ed repo has no HEAD to resolve).
func (r *Repo) HasHead() bool {
	_, err := r.repo.Head()
	return err == nil
}

// RevParse resolves ref (a branch, tag, or other revision expression go-git
// understands) to a full commit hash.
func (r *Repo) RevParse(ref string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", ref, err)
	}
	return hash.String(), nil
}

// RefExists reports whether the given full ref name (e.g.
// "refs/subrepo/foo/fetch") currently exists.
func (r *Repo) RefExists(ref string) bool {
	_, err := r.repo.Reference(plumbing.ReferenceName(ref), false)
	return err == nil
}

// BranchExists reports whether a local branch of the given short name
// exists.
func (r *Repo) BranchExists(name string) bool {
	return r.RefExists(string(plumbing.NewBranchReferenceName(name)))
}

// ReadRef returns the commit hash a ref currently points to.
func (r *Repo) ReadRef(ref string) (string, bool) {
	reference, err := r.repo.Reference(plumbing.ReferenceName(ref), true)
	if err != nil {
		return "", false
	}
	return reference.Hash().String(), true
}

// UpdateRef creates or force-updates a ref (branch or namespaced ref) to
// point at commit.
func (r *Repo) UpdateRef(ref, commit string) error {
	reference := plumbing.NewHashReference(plumbing.ReferenceName(ref), plumbing.NewHash(commit))
	if err := r.repo.Storer.SetReference(reference); err != nil {
		return fmt.Errorf("failed to update ref %s: %w", ref, err)
	}
	return nil
}

// DeleteRef removes a ref if present; deleting an absent ref is a no-op.
func (r *Repo) DeleteRef(ref string) error {
	name := plumbing.ReferenceName(ref)
	if _, err := r.repo.Reference(name, false); err != nil {
		return nil
	}
	if err := r.repo.Storer.RemoveReference(name); err != nil {
		return fmt.Errorf("failed to delete ref %s: %w", ref, err)
	}
	return nil
}

// ListRefs returns the full names of every ref whose name begins with
// prefix, sorted lexicographically.
func (r *Repo) ListRefs(prefix string) ([]string, error) {
	iter, err := r.repo.Storer.IterReferences()
	if err != nil {
		return nil, fmt.Errorf("failed to list refs: %w", err)
	}
	var out []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate refs: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// RemoteURL returns the URL configured for remote name, if any.
func (r *Repo) RemoteURL(name string) (string, bool) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", false
	}
	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", false
	}
	return cfg.URLs[0], true
}

// SetRemote creates the remote if absent, or updates its URL if it already
// exists but points elsewhere.
func (r *Repo) SetRemote(name, url string) error {
	if existing, ok := r.RemoteURL(name); ok {
		if existing == url {
			return nil
		}
		if err := r.repo.DeleteRemote(name); err != nil {
			return fmt.Errorf("failed to remove stale remote %s: %w", name, err)
		}
	}
	_, err := r.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("failed to configure remote %s: %w", name, err)
	}
	return nil
}

// RemoveRemote deletes a remote if configured; removing an absent remote is
// a no-op.
func (r *Repo) RemoveRemote(name string) error {
	if _, ok := r.RemoteURL(name); !ok {
		return nil
	}
	if err := r.repo.DeleteRemote(name); err != nil {
		return fmt.Errorf("failed to remove remote %s: %w", name, err)
	}
	return nil
}

// Path returns the working directory this Repo was opened against.
func (r *Repo) Path() string { return r.path }
