package main

import (
	"github.com/spf13/cobra"
)

var (
	addTitle    string
	addContent  string
	addClientID string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Long:  `Create a note with the given title and content and print the stored item.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		note, err := store.Create(cmd.Context(), addTitle, addContent, cfg.UserID, addClientID)
		if err != nil {
			return err
		}
		return printJSON(note)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addTitle, "title", "", "Note title")
	addCmd.Flags().StringVar(&addContent, "content", "", "Note content")
	addCmd.Flags().StringVar(&addClientID, "client-id", "", "Optional client-generated idempotency id to avoid duplicate creates")
	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("content")
}
