package main

import (
	"context"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}

		notes, err := svc.List(context.Background())
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(cmd.OutOrStdout(), notes)
		}
		return printNotes(cmd.OutOrStdout(), notes)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
