package subrepo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woofgl/git-subrepo/internal/gitexec"
	"github.com/woofgl/git-subrepo/internal/gitrepo"
	"github.com/woofgl/git-subrepo/internal/message"
)

// fixtureRepo creates a real git repository in a temp directory and returns
// a Runner rooted at it, for building test history with ordinary git
// plumbing rather than the engine under test.
func fixtureRepo(t *testing.T) (dir string, r *gitexec.Runner) {
	t.Helper()
	dir = t.TempDir()
	r = gitexec.New(dir)
	if _, err := r.Run("init", "-q", "-b", "main"); err != nil {
		t.Fatalf("git init: %v", err)
	}
	return dir, r
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func commitAll(t *testing.T, r *gitexec.Runner, message string) string {
	t.Helper()
	if _, err := r.Run("add", "-A"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Run("commit", "-q", "-m", message); err != nil {
		t.Fatalf("commit: %v", err)
	}
	head, err := r.Run("rev-parse", "HEAD")
	if err != nil {
		t.Fatalf("rev-parse HEAD: %v", err)
	}
	return head
}

// chdir switches the process into dir for the duration of the test,
// restoring the previous working directory on cleanup. The engine expects
// to run from the repository root, the same assumption preflight.Check
// makes of the real CLI.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}

func fields(cmd string) message.Fields {
	return message.Fields{Command: cmd, OriginalArgs: cmd + " vendor"}
}

// TestEngineLifecycle drives clone, a local mainline edit, pull against new
// upstream history, a further local edit, push, status, and clean through
// one Engine, the way a user would work through the command-line surface.
func TestEngineLifecycle(t *testing.T) {
	upstreamDir, upstreamGit := fixtureRepo(t)
	writeFile(t, upstreamDir, "file.txt", "v1")
	upstreamSeed := commitAll(t, upstreamGit, "seed")

	hostDir, hostGit := fixtureRepo(t)
	writeFile(t, hostDir, "README.md", "host")
	commitAll(t, hostGit, "init host")

	chdir(t, hostDir)

	hostRepo, err := gitrepo.Open(hostDir)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	e := New(hostDir, hostRepo, "test-version")

	// clone
	_, err = e.Clone(CloneInput{URL: upstreamDir, Subdir: "vendor"}, "clone "+upstreamDir+" vendor")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if got, err := os.ReadFile(filepath.Join(hostDir, "vendor", "file.txt")); err != nil || string(got) != "v1" {
		t.Fatalf("vendor/file.txt after clone = %q, %v", got, err)
	}
	rec, err := gitrepo.Load("vendor")
	if err != nil {
		t.Fatalf("gitrepo.Load: %v", err)
	}
	if rec.Remote != upstreamDir || rec.Branch != "main" || rec.Commit != upstreamSeed {
		t.Fatalf("unexpected .gitrepo after clone: %+v", rec)
	}

	// a local mainline edit to the subrepo, the kind pull must replay
	writeFile(t, hostDir, "vendor/local.txt", "local")
	commitAll(t, hostGit, "add local file under vendor")

	// upstream moves on with a commit that does not collide with the local edit
	writeFile(t, upstreamDir, "upstream2.txt", "new")
	upstreamHead := commitAll(t, upstreamGit, "add upstream2")

	_, err = e.Pull(PullInput{Subdir: "vendor"}, "main", fields("pull"))
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	for name, want := range map[string]string{
		"vendor/file.txt":      "v1",
		"vendor/local.txt":     "local",
		"vendor/upstream2.txt": "new",
	} {
		got, err := os.ReadFile(filepath.Join(hostDir, name))
		if err != nil || string(got) != want {
			t.Fatalf("%s after pull = %q, %v; want %q", name, got, err, want)
		}
	}
	rec, err = gitrepo.Load("vendor")
	if err != nil {
		t.Fatalf("gitrepo.Load: %v", err)
	}
	if rec.Commit != upstreamHead {
		t.Fatalf("rec.Commit after pull = %s, want %s", rec.Commit, upstreamHead)
	}

	// pulling again immediately must report up to date
	if _, err := e.Pull(PullInput{Subdir: "vendor"}, "main", fields("pull")); !errors.Is(err, ErrUpToDate) {
		t.Fatalf("second Pull error = %v, want ErrUpToDate", err)
	}

	// another local edit gives push something new to send upstream
	writeFile(t, hostDir, "vendor/local2.txt", "second")
	commitAll(t, hostGit, "add second local file under vendor")

	// detach upstream's HEAD so pushing to its checked-out main succeeds
	if _, err := upstreamGit.Run("checkout", "-q", "--detach"); err != nil {
		t.Fatalf("detach upstream HEAD: %v", err)
	}

	pushed, err := e.Push(PushInput{Subdir: "vendor"}, "main")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	upstreamMain, err := upstreamGit.Run("rev-parse", "main")
	if err != nil {
		t.Fatalf("rev-parse upstream main: %v", err)
	}
	if upstreamMain != pushed {
		t.Fatalf("upstream main = %s, want pushed commit %s", upstreamMain, pushed)
	}
	for name, want := range map[string]string{
		"file.txt":      "v1",
		"upstream2.txt": "new",
		"local.txt":     "local",
		"local2.txt":    "second",
	} {
		got, err := upstreamGit.Run("show", "main:"+name)
		if err != nil || got != want {
			t.Fatalf("upstream main:%s = %q, %v; want %q", name, got, err, want)
		}
	}
	if hostRepo.BranchExists("subrepo-push/vendor") {
		t.Error("subrepo-push/vendor branch should be cleaned up after a successful push")
	}

	// status without forcing a fetch reports the last recorded fetch head
	states, err := e.Status(StatusInput{Subdirs: []string{"vendor"}})
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("Status returned %d entries, want 1", len(states))
	}
	st := states[0]
	if st.Subdir != "vendor" || st.Remote != upstreamDir || st.Branch != "main" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Commit != upstreamHead {
		t.Errorf("status Commit = %s, want %s", st.Commit, upstreamHead)
	}

	// clean tears down the refs/branches the engine maintains
	if err := e.Clean("vendor", true); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if hostRepo.BranchExists("subrepo/vendor") {
		t.Error("subrepo/vendor branch should be gone after a forced clean")
	}
	if _, ok := hostRepo.RemoteURL("subrepo/vendor"); ok {
		t.Error("subrepo/vendor remote should be gone after a forced clean")
	}
	refs, err := hostRepo.ListRefs("refs/subrepo/vendor/")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected no refs/subrepo/vendor/* refs after clean, got %v", refs)
	}

	// .gitrepo itself is left alone by clean; the subdir is still a subrepo
	if !gitrepo.Exists("vendor") {
		t.Error("clean should not remove vendor/.gitrepo")
	}
}

// TestPullConflictReturnsConflictError drives a pull where the local
// mainline edit and the upstream edit touch the same line of the same
// file, forcing the rebase to stop with a conflict.
func TestPullConflictReturnsConflictError(t *testing.T) {
	upstreamDir, upstreamGit := fixtureRepo(t)
	writeFile(t, upstreamDir, "file.txt", "v1\n")
	commitAll(t, upstreamGit, "seed")

	hostDir, hostGit := fixtureRepo(t)
	writeFile(t, hostDir, "README.md", "host")
	commitAll(t, hostGit, "init host")

	chdir(t, hostDir)
	hostRepo, err := gitrepo.Open(hostDir)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	e := New(hostDir, hostRepo, "test-version")

	if _, err := e.Clone(CloneInput{URL: upstreamDir, Subdir: "vendor"}, "clone "+upstreamDir+" vendor"); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	writeFile(t, hostDir, "vendor/file.txt", "local change\n")
	commitAll(t, hostGit, "edit file.txt locally")

	writeFile(t, upstreamDir, "file.txt", "upstream change\n")
	commitAll(t, upstreamGit, "edit file.txt upstream")

	_, err = e.Pull(PullInput{Subdir: "vendor"}, "main", fields("pull"))
	if err == nil {
		t.Fatal("Pull: want a conflict error, got nil")
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Pull error = %v, want *ConflictError", err)
	}
	if !errors.Is(conflict, ErrPullConflict) {
		t.Errorf("conflict.Err = %v, want ErrPullConflict", conflict.Err)
	}
	if conflict.Subdir != "vendor" {
		t.Errorf("conflict.Subdir = %q, want %q", conflict.Subdir, "vendor")
	}
	if conflict.Branch != "main" {
		t.Errorf("conflict.Branch = %q, want %q", conflict.Branch, "main")
	}
	if conflict.SynthBranch == "" || conflict.Detail == "" {
		t.Errorf("conflict missing context: %+v", conflict)
	}
	if Code(err) != 1 {
		t.Errorf("Code(err) = %d, want 1", Code(err))
	}
}

// TestBranchAlreadyBuiltIsNoop covers branch's no-force, already-built case:
// it must succeed (not return ErrBranchExists) and leave the existing
// branch untouched.
func TestBranchAlreadyBuiltIsNoop(t *testing.T) {
	upstreamDir, upstreamGit := fixtureRepo(t)
	writeFile(t, upstreamDir, "file.txt", "v1")
	commitAll(t, upstreamGit, "seed")

	hostDir, hostGit := fixtureRepo(t)
	writeFile(t, hostDir, "README.md", "host")
	commitAll(t, hostGit, "init host")

	chdir(t, hostDir)
	hostRepo, err := gitrepo.Open(hostDir)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	e := New(hostDir, hostRepo, "test-version")

	if _, err := e.Clone(CloneInput{URL: upstreamDir, Subdir: "vendor"}, "clone vendor"); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	writeFile(t, hostDir, "vendor/local.txt", "local")
	commitAll(t, hostGit, "add local file under vendor")

	first, err := e.Branch("vendor", false)
	if err != nil {
		t.Fatalf("first Branch: %v", err)
	}

	second, err := e.Branch("vendor", false)
	if err != nil {
		t.Fatalf("second Branch (already built, no force) should succeed as a no-op: %v", err)
	}
	if second != first {
		t.Errorf("second Branch tip = %s, want unchanged %s", second, first)
	}
}

func TestCloneRejectsNonEmptySubdirWithoutForce(t *testing.T) {
	upstreamDir, upstreamGit := fixtureRepo(t)
	writeFile(t, upstreamDir, "file.txt", "v1")
	commitAll(t, upstreamGit, "seed")

	hostDir, hostGit := fixtureRepo(t)
	writeFile(t, hostDir, "README.md", "host")
	writeFile(t, hostDir, "vendor/existing.txt", "already here")
	commitAll(t, hostGit, "init host with pre-existing vendor dir")

	chdir(t, hostDir)
	hostRepo, err := gitrepo.Open(hostDir)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	e := New(hostDir, hostRepo, "test-version")

	_, err = e.Clone(CloneInput{URL: upstreamDir, Subdir: "vendor"}, "clone vendor")
	if !errors.Is(err, ErrNonEmptySubdir) {
		t.Fatalf("Clone error = %v, want ErrNonEmptySubdir", err)
	}
}
