package message

import "testing"

func TestBuild(t *testing.T) {
	got, err := Build(Fields{
		Command:      "pull",
		OriginalArgs: "vendor/widgets",
		Subdir:       "vendor/widgets",
		MergedSHA:    "abc1234",
		Remote:       "https://example.com/widgets.git",
		Branch:       "main",
		UpstreamSHA:  "def5678",
		ToolVersion:  "1.2.3",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	want := `git subrepo pull vendor/widgets

subrepo:
  subdir:   "vendor/widgets"
  merged:   "abc1234"
upstream:
  origin:   "https://example.com/widgets.git"
  branch:   "main"
  commit:   "def5678"
git-subrepo:
  version:  "1.2.3"
  origin:   ""
  commit:   ""
`
	if got != want {
		t.Errorf("Build() =\n%s\nwant:\n%s", got, want)
	}
}
