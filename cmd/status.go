package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/woofgl/git-subrepo/internal/pager"
	"github.com/woofgl/git-subrepo/internal/refns"
	"github.com/woofgl/git-subrepo/internal/subrepo"
)

var statusFetch bool

var statusCmd = &cobra.Command{
	Use:   "status [subdir...]",
	Short: "Show every tracked subrepo's recorded and fetched upstream state",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := openEngine()
		if err != nil {
			return err
		}

		states, err := eng.Status(subrepo.StatusInput{Subdirs: args, Fetch: statusFetch})
		if err != nil {
			return err
		}

		if quiet {
			for _, st := range states {
				fmt.Fprintln(cmd.OutOrStdout(), st.Subdir)
			}
			return nil
		}

		p, err := pager.Start(os.Stdout)
		if err != nil {
			return fmt.Errorf("git-subrepo: %w", err)
		}
		defer p.Close()

		// Plain text only in the table body: lipgloss escape codes count
		// as visible runes to tabwriter and would throw off column widths.
		tw := tabwriter.NewWriter(p.Writer, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBDIR\tREMOTE\tBRANCH\tPARENT\tCOMMIT\tFETCHED\tSTATE")
		for _, st := range states {
			state := "new upstream commits"
			if st.FetchHead == "" {
				state = "never fetched"
			} else if st.UpToDate {
				state = "up to date"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				st.Subdir, st.Remote, st.Branch, subrepo.ShortSHA(st.Parent),
				subrepo.ShortSHA(st.Commit), subrepo.ShortSHA(st.FetchHead), state)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if verbose {
			for _, st := range states {
				ns := refns.New(st.Subdir)
				fmt.Fprintf(p.Writer, "\n%s (cmdver %s):\n", st.Subdir, st.CmdVer)
				for _, kind := range refns.All {
					tip, ok := eng.Repo.ReadRef(ns.Ref(kind))
					if !ok {
						tip = "(none)"
					} else {
						tip = subrepo.ShortSHA(tip)
					}
					fmt.Fprintf(p.Writer, "  %s\t%s\n", ns.Ref(kind), tip)
				}
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusFetch, "fetch", "F", false, "fetch each subrepo's upstream before reporting")
	rootCmd.AddCommand(statusCmd)
}
