package subrepo

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root looking for "*/.gitrepo" files and returns the
// subdirectories that own them, in lexicographic order, with any subrepo
// nested inside another discovered subrepo dropped in favour of the
// outermost one: status without explicit subdirs reports the top-level
// subrepos only.
func Discover(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == ".gitrepo" {
			rel, rerr := filepath.Rel(root, filepath.Dir(path))
			if rerr != nil {
				return rerr
			}
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return dedupeNested(found), nil
}

// dedupeNested drops any entry that is a path-prefixed descendant of an
// earlier (shorter) entry in a sorted slice.
func dedupeNested(subdirs []string) []string {
	var out []string
	for _, s := range subdirs {
		nested := false
		for _, kept := range out {
			if strings.HasPrefix(s, kept+"/") {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, s)
		}
	}
	return out
}
