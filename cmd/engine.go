package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/message"
	"github.com/woofgl/git-subrepo/internal/preflight"
	"github.com/woofgl/git-subrepo/internal/subrepo"
	"github.com/woofgl/git-subrepo/internal/ui"
)

// openEngine runs the repo-readiness preflight checks and builds an Engine
// rooted at the current directory, the first step of every subcommand.
func openEngine() (*subrepo.Engine, *preflight.Result, error) {
	res, err := preflight.Check(".")
	if err != nil {
		return nil, nil, err
	}
	e := subrepo.New(".", res.Repo, version)
	e.Git.Verbose = verbose
	return e, res, nil
}

// commandLine returns the original-args part of a commit message's first
// line ("git subrepo <command> <original args>"): the positional args,
// space-joined.
func commandLine(cmd *cobra.Command, args []string) string {
	return strings.Join(args, " ")
}

// messageFields builds a message.Fields populated with the command name
// and original arguments; per-operation code fills in the rest.
func messageFields(cmd *cobra.Command, args []string) message.Fields {
	return message.Fields{
		Command:      cmd.Name(),
		OriginalArgs: commandLine(cmd, args),
		ToolVersion:  version,
	}
}

// benign reports whether err is a "nothing to do" outcome rather than a
// real failure: up-to-date or no-new-commits. --all iteration and main's
// exit-code mapping both need this distinction.
func benign(err error) bool {
	return errors.Is(err, subrepo.ErrUpToDate) || errors.Is(err, subrepo.ErrNoNewCommits)
}

// subdirsFor resolves the subdirs a command should operate over: either
// the single positional arg, or (when all is set) every discovered
// subrepo.
func subdirsFor(dir string, arg string, all bool) ([]string, error) {
	if !all {
		return []string{arg}, nil
	}
	return subrepo.Discover(dir)
}

// errMultiFailed is returned by --all loops when at least one subdir
// failed; per-subdir errors are already printed as they occur, so main
// prints only this one-line summary and exits nonzero.
var errMultiFailed = fmt.Errorf("one or more subrepos failed")

// runAll runs op over every subdir in subdirs, printing each outcome via
// report and continuing past failures rather than aborting on the first
// one. It returns errMultiFailed if any subdir failed. With a single
// subdir, a failure is returned as-is so main can style it, map it to an
// exit code, and print a recovery script for a rebase conflict.
func runAll(cmd *cobra.Command, subdirs []string, op func(subdir string) error) error {
	if len(subdirs) == 1 {
		return report(cmd, subdirs[0], op(subdirs[0]))
	}
	var failed bool
	for _, subdir := range subdirs {
		err := op(subdir)
		if rerr := report(cmd, subdir, err); rerr != nil {
			ui.Fail("%s: %s", subdir, rerr)
			failed = true
		}
	}
	if failed {
		return errMultiFailed
	}
	return nil
}

// report prints a command's outcome the way the root dispatcher expects:
// benign outcomes go to stdout via ui.Info, real failures are returned as
// errors for main to style and turn into an exit code.
func report(cmd *cobra.Command, subdir string, err error) error {
	if quiet {
		if err != nil && !benign(err) {
			return err
		}
		return nil
	}
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(subdir+": done"))
		return nil
	}
	if benign(err) {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info(subdir+": "+err.Error()))
		return nil
	}
	return err
}
