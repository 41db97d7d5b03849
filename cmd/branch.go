package cmd

import (
	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	branchAll   bool
	branchFetch bool
	branchForce bool
)

var branchCmd = &cobra.Command{
	Use:   "branch [subdir]",
	Short: "Rebuild the upstream-equivalent subrepo/<subdir> branch",
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
		subdirs, err := subdirsFor(eng.Dir, arg, branchAll)
		if err != nil {
			return err
		}

		return runAll(cmd, subdirs, func(subdir string) error {
			if branchFetch {
				if _, err := eng.Fetch(subrepo.FetchInput{Subdir: subdir}); err != nil {
					return err
				}
			}
			_, err := eng.Branch(subdir, branchForce)
			return err
		})
	},
}

func init() {
	branchCmd.Flags().BoolVar(&branchAll, "all", false, "rebuild every discovered subrepo's branch")
	branchCmd.Flags().BoolVar(&branchFetch, "fetch", false, "refresh the recorded upstream head before rebuilding")
	branchCmd.Flags().BoolVarP(&branchForce, "force", "f", false, "rebuild even if subrepo/<subdir> already exists")
	rootCmd.AddCommand(branchCmd)
}
