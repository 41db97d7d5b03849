package cmd

import (
	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var (
	commitFetch bool
	commitForce bool
)

var commitCmd = &cobra.Command{
	Use:   "commit <subdir> [commit-ref]",
	Short: "Squash a subrepo branch's tree into <subdir> as one mainline commit",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}

		subdir := args[0]
		commitRef := ""
		if len(args) == 2 {
			commitRef = args[1]
		}

		if commitFetch {
			if _, err := eng.Fetch(subrepo.FetchInput{Subdir: subdir}); err != nil {
				return err
			}
		}

		_, err = eng.Commit(subrepo.CommitInput{
			Subdir:    subdir,
			CommitRef: commitRef,
			Force:     commitForce,
		}, messageFields(cmd, args))
		return err
	},
}

func init() {
	commitCmd.Flags().BoolVar(&commitFetch, "fetch", false, "refresh the recorded upstream head before committing")
	commitCmd.Flags().BoolVarP(&commitForce, "force", "f", false, "commit even if the fetched upstream head is not an ancestor of commit-ref")
	rootCmd.AddCommand(commitCmd)
}
