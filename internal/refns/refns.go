// Package refns centralises the refs/subrepo/<subdir>/* naming convention so
// that no other package constructs these strings by hand.
package refns

import "strings"

// Kind identifies one of the five ref slots a subrepo maintains.
type Kind string

const (
	Fetch  Kind = "fetch"
	Branch Kind = "branch"
	Commit Kind = "commit"
	Pull   Kind = "pull"
	Push   Kind = "push"
)

// All lists every ref kind, in the display order status uses.
var All = []Kind{Fetch, Branch, Commit, Pull, Push}

const root = "refs/subrepo"

// Namespace builds and parses refs/subrepo/<subdir>/* names for one subdir.
type Namespace struct {
	Subdir string
}

// New returns a Namespace for subdir, trimming any trailing slash.
func New(subdir string) Namespace {
	return Namespace{Subdir: strings.TrimSuffix(subdir, "/")}
}

// Ref returns the full ref name for the given kind, e.g.
// "refs/subrepo/vendor/foo/fetch".
func (n Namespace) Ref(kind Kind) string {
	return strings.Join([]string{root, n.Subdir, string(kind)}, "/")
}

// Prefix returns the ref-subtree prefix for this subdir:
// "refs/subrepo/<subdir>/".
func (n Namespace) Prefix() string {
	return root + "/" + n.Subdir + "/"
}

// SubrepoBranch is the synthesised upstream-equivalent branch name,
// "subrepo/<subdir>".
func (n Namespace) SubrepoBranch() string {
	return "subrepo/" + n.Subdir
}

// PushBranch is the temporary rebase target used during push,
// "subrepo-push/<subdir>".
func (n Namespace) PushBranch() string {
	return "subrepo-push/" + n.Subdir
}

// Remote is the name of the convenience remote pointing at the upstream URL,
// "subrepo/<subdir>".
func (n Namespace) Remote() string {
	return "subrepo/" + n.Subdir
}

// SubdirFromRef extracts the subdir from a "refs/subrepo/<subdir>/<kind>"
// name. It returns false if ref does not live under the subrepo namespace.
func SubdirFromRef(ref string) (subdir string, kind Kind, ok bool) {
	if !strings.HasPrefix(ref, root+"/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, root+"/")
	idx := strings.LastIndex(rest, "/")
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], Kind(rest[idx+1:]), true
}
