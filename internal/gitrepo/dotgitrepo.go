package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// header is written once, at creation time, and preserved by ini.v1's
// load/save round-trip on every subsequent rewrite.
const header = `; This file is auto-generated by git-subrepo.
; It tracks the provenance of this subdirectory's upstream content.
; Edit the "branch" and "remote" values by hand only if you know what
; you are doing; never edit "commit" or "parent" directly.
`

// Record is the parsed contents of a <subdir>/.gitrepo file.
type Record struct {
	Remote string
	Branch string
	Commit string
	Parent string
	CmdVer string

	// FormerParent is the legacy "former" key, read-only and only
	// populated when Parent itself was absent from the file.
	FormerParent string
}

// Path returns the path to subdir's .gitrepo file.
func Path(subdir string) string {
	return filepath.Join(subdir, ".gitrepo")
}

// Load reads and parses <subdir>/.gitrepo.
func Load(subdir string) (*Record, error) {
	path := Path(subdir)
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sec := f.Section("subrepo")
	rec := &Record{
		Remote: sec.Key("remote").String(),
		Branch: sec.Key("branch").String(),
		Commit: sec.Key("commit").String(),
		Parent: sec.Key("parent").String(),
		CmdVer: sec.Key("cmdver").String(),
	}
	if rec.Parent == "" {
		rec.FormerParent = sec.Key("former").String()
	}
	if rec.CmdVer == "" {
		rec.CmdVer = "(unknown)"
	}
	return rec, nil
}

// EffectiveParent returns Parent, falling back to the legacy FormerParent
// when Parent was never recorded.
func (r *Record) EffectiveParent() string {
	if r.Parent != "" {
		return r.Parent
	}
	return r.FormerParent
}

// Save writes rec to <subdir>/.gitrepo, creating the file (with its header
// comment) if it does not already exist, or preserving the existing header
// and any other custom comments on rewrite.
func Save(subdir string, rec *Record) error {
	path := Path(subdir)

	var f *ini.File
	if _, err := os.Stat(path); err == nil {
		f, err = ini.Load(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		f = ini.Empty()
		f.Comment = header
	}

	sec := f.Section("subrepo")
	sec.Key("remote").SetValue(rec.Remote)
	sec.Key("branch").SetValue(rec.Branch)
	sec.Key("commit").SetValue(rec.Commit)
	sec.Key("parent").SetValue(rec.Parent)
	sec.Key("cmdver").SetValue(rec.CmdVer)
	sec.DeleteKey("former")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether subdir already has a .gitrepo file.
func Exists(subdir string) bool {
	_, err := os.Stat(Path(subdir))
	return err == nil
}
