package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteID string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a note by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), deleteID, cfg.UserID); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "Note id")
	deleteCmd.MarkFlagRequired("id")
}
