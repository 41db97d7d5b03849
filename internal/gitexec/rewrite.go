package gitexec

import (
	"fmt"
	"strings"
)

// ErrNoNewCommits is returned by RewriteBranch when the mainline history
// since parent never touched subdir, or only re-recorded unchanged
// content.
var ErrNoNewCommits = fmt.Errorf("no new commits")

type commitMeta struct {
	message         string
	authorName      string
	authorEmail     string
	authorDate      string
	committerName   string
	committerEmail  string
	committerDate   string
}

func (r *Runner) commitMeta(hash string) (commitMeta, error) {
	out, err := r.Run("log", "-n", "1",
		"--format=%an%x00%ae%x00%ad%x00%cn%x00%ce%x00%cd%x00%B",
		"--date=raw", hash)
	if err != nil {
		return commitMeta{}, err
	}
	parts := strings.SplitN(out, "\x00", 7)
	if len(parts) != 7 {
		return commitMeta{}, fmt.Errorf("unable to parse commit metadata for %s", hash)
	}
	return commitMeta{
		authorName:     parts[0],
		authorEmail:    parts[1],
		authorDate:     parts[2],
		committerName:  parts[3],
		committerEmail: parts[4],
		committerDate:  parts[5],
		message:        parts[6],
	}, nil
}

// commitTreeAs creates a commit object carrying meta's author/committer
// identity and dates, so rewritten commits read like faithful replays of
// the originals rather than fresh git-subrepo-authored commits.
func (r *Runner) commitTreeAs(tree string, meta commitMeta, parents ...string) (string, error) {
	args := []string{"commit-tree", tree}
	for _, p := range parents {
		args = append(args, "-p", p)
	}
	identity := []string{
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=" + meta.authorName,
		"GIT_AUTHOR_EMAIL=" + meta.authorEmail,
		"GIT_AUTHOR_DATE=" + meta.authorDate,
		"GIT_COMMITTER_NAME=" + meta.committerName,
		"GIT_COMMITTER_EMAIL=" + meta.committerEmail,
		"GIT_COMMITTER_DATE=" + meta.committerDate,
	}
	return r.runRawEnv(identity, meta.message, args...)
}

// filteredSubtree returns the tree hash of <subdir> at hash with any
// top-level ".gitrepo" entry removed, and ok=false if subdir does not
// exist in that commit's tree at all (such commits collapse away rather
// than appearing as empty ones in the synthesised branch).
func (r *Runner) filteredSubtree(hash, subdir string) (tree string, ok bool, err error) {
	raw, code, err := r.RunExitCode("rev-parse", "--verify", "-q", hash+":"+subdir)
	if err != nil {
		return "", false, err
	}
	if code != 0 {
		return "", false, nil
	}
	raw = strings.TrimSpace(raw)

	entries, err := r.Run("ls-tree", raw)
	if err != nil {
		return "", false, err
	}
	var all, kept []string
	for _, line := range strings.Split(entries, "\n") {
		if line == "" {
			continue
		}
		all = append(all, line)
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) == 2 && fields[1] == ".gitrepo" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == len(all) {
		// No .gitrepo entry present; the subtree is already clean.
		return raw, true, nil
	}
	newTree, err := r.RunWithStdin(strings.Join(kept, "\n")+"\n", "mktree")
	if err != nil {
		return "", false, err
	}
	return newTree, true, nil
}

type builtCommit struct {
	old  string
	new  string
	tree string
	meta commitMeta
}

// RewriteBranch performs the collapsed three-pass history rewrite that
// turns a range of mainline commits into an upstream-equivalent branch:
// it walks commits oldest-first in parentRef..headRef, reparenting each
// to drop parentRef (parent rewrite I),
// substituting the subdir subtree with .gitrepo removed as the new root
// tree (subdirectory rewrite + tree rewrite), collapsing commits whose
// subdir content did not change, and finally excising the oldest surviving
// commit (the former pull-base squash) as a parent reference so the
// branch is rooted at the first genuine subrepo change (parent rewrite
// II). It returns the tip commit of the synthesised branch.
func (r *Runner) RewriteBranch(parentRef, headRef, subdir string) (tip string, err error) {
	commits, err := r.RevListRange(parentRef + ".." + headRef)
	if err != nil {
		return "", err
	}
	if len(commits) < 2 {
		return "", ErrNoNewCommits
	}

	var built []builtCommit
	prevTree := ""
	prevNew := ""
	for _, oldHash := range commits {
		tree, ok, err := r.filteredSubtree(oldHash, subdir)
		if err != nil {
			return "", err
		}
		if !ok || tree == prevTree {
			continue
		}
		meta, err := r.commitMeta(oldHash)
		if err != nil {
			return "", err
		}
		var parents []string
		if prevNew != "" {
			parents = []string{prevNew}
		}
		newHash, err := r.commitTreeAs(tree, meta, parents...)
		if err != nil {
			return "", err
		}
		built = append(built, builtCommit{old: oldHash, new: newHash, tree: tree, meta: meta})
		prevTree, prevNew = tree, newHash
	}

	if len(built) < 2 {
		return "", ErrNoNewCommits
	}

	// Parent rewrite II: drop built[0] (the pull-base squash) as a parent
	// reference, rebuilding the remaining chain rooted at built[1].
	var rebuiltParent string
	for _, b := range built[1:] {
		var parents []string
		if rebuiltParent != "" {
			parents = []string{rebuiltParent}
		}
		newHash, err := r.commitTreeAs(b.tree, b.meta, parents...)
		if err != nil {
			return "", err
		}
		rebuiltParent = newHash
	}
	return rebuiltParent, nil
}
