package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var resyncConcurrency int

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Fetch and sync every user with a stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		outcomes, err := newSyncService(repo).ResyncAll(cmd.Context(), resyncConcurrency)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tHANDLE\tSYNCED\tERRORS\tSTATUS")
		failed := 0
		for _, o := range outcomes {
			status := "ok"
			if o.Err != nil {
				status = o.Err.Error()
				failed++
			}
			fmt.Fprintf(tw, "%s\t@%s\t%d\t%d\t%s\n", o.UserID, o.Handle, o.Result.Synced, o.Result.Errors, status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d users failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	resyncCmd.Flags().IntVar(&resyncConcurrency, "concurrency", 4, "Users synced in parallel")
}
