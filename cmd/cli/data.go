package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	importFile string
	importUser string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Sync a video list file into a user's daily posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := readPosts(importFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", importFile, err)
		}
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		result, err := newSyncService(repo).FullSync(cmd.Context(), importUser, posts)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days (%d errors)\n", result.Synced, result.Errors)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every stored daily post as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		posts, err := repo.DumpDailyPosts(cmd.Context())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), posts)
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file with videos")
	importCmd.Flags().StringVar(&importUser, "user", "", "User id to import into")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("user")
}
