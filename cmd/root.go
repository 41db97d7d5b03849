// Package cmd wires the git-subrepo command tree: one cobra.Command per
// porcelain operation, each a thin adapter that runs preflight checks,
// builds an internal/subrepo.Engine, and translates its sentinel errors
// into exit codes and ui-styled output. Each command file declares its
// own package-level *cobra.Command and registers it against rootCmd from
// its own init().
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version string // Set by SetVersion

	quiet   bool
	verbose bool
	debug   bool

	rootCmd = &cobra.Command{
		Use:           "git-subrepo",
		Short:         "Embed an upstream Git repository as a tracked subdirectory",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by `--version` and stamped
// into every .gitrepo record's cmdver field.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Debug reports whether --debug (or $GIT_SUBREPO_DEBUG) was set, so main
// knows whether to print an error's full detail (captured git output) or
// just its leading line.
func Debug() bool { return debug }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", envFlag("GIT_SUBREPO_QUIET"), "suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", envFlag("GIT_SUBREPO_VERBOSE"), "show each git command as it runs")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", envFlag("GIT_SUBREPO_DEBUG"), "show full internal error detail")
}

// envFlag reports whether the named environment variable is set to 1, true
// or yes (case-insensitive), used to seed a persistent flag's default from
// $GIT_SUBREPO_QUIET/$GIT_SUBREPO_VERBOSE/$GIT_SUBREPO_DEBUG.
func envFlag(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes"
}
