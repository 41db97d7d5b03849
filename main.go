package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/woofgl/git-subrepo/cmd"
	"github.com/woofgl/git-subrepo/internal/subrepo"
	"github.com/woofgl/git-subrepo/internal/ui"
)

var (
	// Version information (set by goreleaser)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cmd.SetVersion(Version)
	err := cmd.Execute()
	if err == nil {
		return
	}

	if errors.Is(err, subrepo.ErrUpToDate) || errors.Is(err, subrepo.ErrNoNewCommits) {
		fmt.Println(ui.Info(err.Error()))
		os.Exit(0)
	}

	ui.Fail("%s", formatErr(err))

	var conflict *subrepo.ConflictError
	if errors.As(err, &conflict) {
		printRecovery(conflict)
	}

	os.Exit(subrepo.Code(err))
}

// printRecovery prints the stepwise script a rebase conflict left mid-way
// through a pull or push leaves the user to finish by hand: resolve, then
// either continue the operation or abort back to where they started.
func printRecovery(c *subrepo.ConflictError) {
	fmt.Fprintln(os.Stderr, ui.Recovery("resolve the conflicts above, `git add` the result, then either:"))
	fmt.Fprintln(os.Stderr, ui.Recovery("  git rebase --continue"))
	if errors.Is(c.Err, subrepo.ErrPullConflict) {
		fmt.Fprintln(os.Stderr, ui.Recovery(fmt.Sprintf("  git subrepo commit %s", c.Subdir)))
	} else {
		fmt.Fprintln(os.Stderr, ui.Recovery(fmt.Sprintf("  git subrepo push %s %s", c.Subdir, c.SynthBranch)))
	}
	fmt.Fprintln(os.Stderr, ui.Recovery(fmt.Sprintf("on branch %s, or give up and go back to where you started:", c.Branch)))
	fmt.Fprintln(os.Stderr, ui.Recovery("  git rebase --abort"))
	fmt.Fprintln(os.Stderr, ui.Recovery("  git checkout ORIG_HEAD"))
	fmt.Fprintln(os.Stderr, ui.Recovery(fmt.Sprintf("  git subrepo clean %s", c.Subdir)))
}

// formatErr trims a failed git invocation's captured combined output off
// the end of err's message unless --debug was given; that detail is
// useful for diagnosing a conflict but noisy for routine failures.
func formatErr(err error) string {
	msg := err.Error()
	if cmd.Debug() {
		return msg
	}
	if i := strings.Index(msg, "\n"); i >= 0 {
		return msg[:i]
	}
	return msg
}
