package subrepo

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

var subdirNameRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// DeriveSubdir derives a subdir name from the final path component of a
// clone URL, stripping a trailing "/" and ".git" suffix.
func DeriveSubdir(url string) (string, error) {
	trimmed := strings.TrimSuffix(url, "/")
	base := path.Base(trimmed)
	base = strings.TrimSuffix(base, ".git")
	if !subdirNameRe.MatchString(base) {
		return "", fmt.Errorf("cannot derive a subdir name from %q; pass one explicitly", url)
	}
	return base, nil
}

// dirEmptyOrAbsent reports whether dir does not exist, or exists but has no
// entries.
func dirEmptyOrAbsent(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}

// clearDirContents removes every entry inside dir, preserving dir itself.
func clearDirContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(path.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path.Join(dir, entry.Name()), err)
		}
	}
	return nil
}

// ShortSHA truncates a full commit hash to its short (7-char) form, the
// way the commit message builder's "merged"/"commit" fields want it.
func ShortSHA(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
