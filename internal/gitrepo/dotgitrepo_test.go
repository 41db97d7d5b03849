package gitrepo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveCreatesHeaderAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	subdir := filepath.Join(dir, "vendor", "widgets")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	rec := &Record{
		Remote: "https://example.com/widgets.git",
		Branch: "main",
		Commit: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Parent: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		CmdVer: "1.0.0",
	}
	if err := Save(subdir, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(Path(subdir))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), "auto-generated by git-subrepo") {
		t.Error("expected the header comment to be written on first save")
	}

	loaded, err := Load(subdir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *rec {
		t.Errorf("Load() = %+v, want %+v", *loaded, *rec)
	}
}

func TestSavePreservesHeaderAndDropsFormer(t *testing.T) {
	dir := t.TempDir()
	subdir := filepath.Join(dir, "vendor")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	raw := `; This file is auto-generated by git-subrepo.
[subrepo]
	remote = https://example.com/widgets.git
	branch = main
	commit = aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
	former = bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb
	cmdver = 0.9.0
`
	if err := os.WriteFile(Path(subdir), []byte(raw), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(subdir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Parent != "" {
		t.Fatalf("expected no parent before first Save, got %q", loaded.Parent)
	}
	if got, want := loaded.EffectiveParent(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"; got != want {
		t.Fatalf("EffectiveParent() = %q, want %q (fallback to former)", got, want)
	}

	loaded.Parent = "cccccccccccccccccccccccccccccccccccccccc"
	if err := Save(subdir, loaded); err != nil {
		t.Fatalf("Save: %v", err)
	}

	after, err := os.ReadFile(Path(subdir))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(after), "former") {
		t.Error("expected Save to drop the legacy former key")
	}
	if !strings.Contains(string(after), "auto-generated by git-subrepo") {
		t.Error("expected the original header comment to survive a rewrite")
	}

	reloaded, err := Load(subdir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.EffectiveParent() != "cccccccccccccccccccccccccccccccccccccccc" {
		t.Errorf("EffectiveParent() after rewrite = %q", reloaded.EffectiveParent())
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists() = true before any .gitrepo file was written")
	}
	if err := Save(dir, &Record{Remote: "u", Branch: "b", Commit: "c", CmdVer: "v"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(dir) {
		t.Error("Exists() = false after Save")
	}
}
