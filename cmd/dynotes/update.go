package main

import (
	"github.com/spf13/cobra"
)

var (
	updateID      string
	updateTitle   string
	updateContent string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a note's title and/or content",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		var title, content *string
		if cmd.Flags().Changed("title") {
			title = &updateTitle
		}
		if cmd.Flags().Changed("content") {
			content = &updateContent
		}
		note, err := store.Update(cmd.Context(), updateID, title, content, cfg.UserID)
		if err != nil {
			return err
		}
		return printJSON(note)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateID, "id", "", "Note id")
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New content")
	updateCmd.MarkFlagRequired("id")
}
