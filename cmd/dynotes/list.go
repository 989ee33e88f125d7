package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Long: `List scans the whole table and prints every note. With --user-id on a
table with a sort key, only that user's notes are returned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		items, err := store.List(cmd.Context(), cfg.UserID)
		if err != nil {
			return err
		}
		return printJSON(items)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
