package cmd

import (
	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	fetchAll    bool
	fetchBranch string
	fetchRemote string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [subdir]",
	Short: "Refresh the recorded upstream head without touching the worktree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}

		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		subdirs, err := subdirsFor(eng.Dir, arg, fetchAll)
		if err != nil {
			return err
		}

		return runAll(cmd, subdirs, func(subdir string) error {
			_, err := eng.Fetch(subrepo.FetchInput{Subdir: subdir, Remote: fetchRemote, Branch: fetchBranch})
			return err
		})
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "fetch every discovered subrepo")
	fetchCmd.Flags().StringVarP(&fetchBranch, "branch", "b", "", "fetch this branch instead of the recorded one")
	fetchCmd.Flags().StringVarP(&fetchRemote, "remote", "r", "", "fetch from this remote instead of the recorded one")
	rootCmd.AddCommand(fetchCmd)
}
