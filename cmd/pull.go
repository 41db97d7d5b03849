package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	pullAll    bool
	pullBranch string
	pullRemote string
	pullUpdate bool
)

var pullCmd = &cobra.Command{
	Use:   "pull [subdir]",
	Short: "Merge new upstream commits into <subdir>",
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if pullUpdate && !cmd.Flags().Changed("branch") && !cmd.Flags().Changed("remote") {
			return fmt.Errorf("git-subrepo: --update requires --branch or --remote")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, res, err := openEngine()
		if err != nil {
			return err
		}

		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		subdirs, err := subdirsFor(eng.Dir, arg, pullAll)
		if err != nil {
			return err
		}

		return runAll(cmd, subdirs, func(subdir string) error {
			fields := messageFields(cmd, args)
			_, err := eng.Pull(subrepo.PullInput{
				Subdir: subdir,
				Remote: pullRemote,
				Branch: pullBranch,
				Update: pullUpdate,
			}, res.CurrentBranch, fields)
			return err
		})
	},
}

func init() {
	pullCmd.Flags().BoolVar(&pullAll, "all", false, "pull every discovered subrepo")
	pullCmd.Flags().StringVarP(&pullBranch, "branch", "b", "", "upstream branch to pull, used with --update to change the recorded branch")
	pullCmd.Flags().StringVarP(&pullRemote, "remote", "r", "", "upstream remote to pull, used with --update to change the recorded remote")
	pullCmd.Flags().BoolVarP(&pullUpdate, "update", "u", false, "persist --branch/--remote into .gitrepo instead of using them for this pull only")
	rootCmd.AddCommand(pullCmd)
}
