package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	cloneBranch string
	cloneForce  bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone <upstream-url> [subdir]",
	Short: "Clone an upstream repository into a new tracked subdirectory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}

		subdir := ""
		if len(args) == 2 {
			subdir = args[1]
		}

		newHead, err := eng.Clone(subrepo.CloneInput{
			URL:    args[0],
			Subdir: subdir,
			Branch: cloneBranch,
			Force:  cloneForce,
		}, commandLine(cmd, args))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", newHead)
		return nil
	},
}

func init() {
	cloneCmd.Flags().StringVarP(&cloneBranch, "branch", "b", "", "upstream branch to clone (default: upstream's default branch)")
	cloneCmd.Flags().BoolVarP(&cloneForce, "force", "f", false, "clone into a non-empty directory, or re-clone over an existing subrepo")
	rootCmd.AddCommand(cloneCmd)
}
