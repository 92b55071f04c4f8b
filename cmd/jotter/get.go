package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		svc, err := openService(cmd)
		if err != nil {
			return err
		}

		note, found, err := svc.Get(context.Background(), id)
		if err != nil {
			return err
		}
		if !found {
			return &core.NotFoundError{ID: id}
		}
		if getJSON {
			return printJSON(cmd.OutOrStdout(), note)
		}
		printNote(cmd.OutOrStdout(), note)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output in JSON format")
}
