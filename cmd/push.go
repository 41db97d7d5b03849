package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	pushAll    bool
	pushBranch string
	pushRemote string
	pushUpdate bool
	pushForce  bool
)

var pushCmd = &cobra.Command{
	Use:   "push [subdir] [branch-name]",
	Short: "Push <subdir>'s mainline history back to its upstream branch",
	Args: cobra.RangeArgs(0, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if pushUpdate && !cmd.Flags().Changed("branch") && !cmd.Flags().Changed("remote") {
			return fmt.Errorf("git-subrepo: --update requires --branch or --remote")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, res, err := openEngine()
		if err != nil {
			return err
		}

		arg, branchName := "", ""
		if len(args) >= 1 {
			arg = args[0]
		}
		if len(args) == 2 {
			branchName = args[1]
		}

		subdirs, err := subdirsFor(eng.Dir, arg, pushAll)
		if err != nil {
			return err
		}

		return runAll(cmd, subdirs, func(subdir string) error {
			tip, err := eng.Push(subrepo.PushInput{
				Subdir:     subdir,
				BranchName: branchName,
				Remote:     pushRemote,
				Branch:     pushBranch,
				Update:     pushUpdate,
				Force:      pushForce,
			}, res.CurrentBranch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tip)
			return nil
		})
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushAll, "all", false, "push every discovered subrepo")
	pushCmd.Flags().StringVarP(&pushBranch, "branch", "b", "", "push to this upstream branch, used with --update to change the recorded branch")
	pushCmd.Flags().StringVarP(&pushRemote, "remote", "r", "", "push to this remote, used with --update to change the recorded remote")
	pushCmd.Flags().BoolVarP(&pushUpdate, "update", "u", false, "persist --branch/--remote into .gitrepo")
	pushCmd.Flags().BoolVarP(&pushForce, "force", "f", false, "push even if the fetched upstream head is not an ancestor of the pushed commit")
	rootCmd.AddCommand(pushCmd)
}
