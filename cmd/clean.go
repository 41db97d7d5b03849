package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cleanAll   bool
	cleanForce bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [subdir]",
	Short: "Remove leftover synthesised branches and refs for a subrepo",
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
		subdirs, err := subdirsFor(eng.Dir, arg, cleanAll)
		if err != nil {
			return err
		}

		return runAll(cmd, subdirs, func(subdir string) error {
			return eng.Clean(subdir, cleanForce)
		})
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "clean every discovered subrepo")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "also remove the refs/subrepo/<subdir> namespace")
	rootCmd.AddCommand(cleanCmd)
}
