package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arvidh/dynotes/notes"
	"github.com/spf13/cobra"
)

var getID string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch a single note by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		note, err := store.Get(cmd.Context(), getID, cfg.UserID)
		if errors.Is(err, notes.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "Note not found")
			os.Exit(2)
		}
		if err != nil {
			return err
		}
		return printJSON(note)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getID, "id", "", "Note id")
	getCmd.MarkFlagRequired("id")
}
