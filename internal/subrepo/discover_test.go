package subrepo

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touchGitrepo(t *testing.T, root, subdir string) {
	t.Helper()
	dir := filepath.Join(root, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitrepo"), []byte("[subrepo]\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscoverDropsNestedSubrepos(t *testing.T) {
	root := t.TempDir()
	touchGitrepo(t, root, "a")
	touchGitrepo(t, root, "b")
	touchGitrepo(t, root, filepath.Join("a", "vendor", "c"))
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("MkdirAll .git: %v", err)
	}
	touchGitrepo(t, filepath.Join(root, ".git"), "should-be-ignored")

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDedupeNested(t *testing.T) {
	got := dedupeNested([]string{"a", "a/vendor/c", "aa", "b"})
	want := []string{"a", "aa", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeNested() = %v, want %v", got, want)
	}
}
