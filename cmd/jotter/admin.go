package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

var (
	clearYes   bool
	destroyYes bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every note, keeping the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return errNotConfirmed
		}
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		if err := svc.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All notes deleted.")
		return nil
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the store itself",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !destroyYes {
			return errNotConfirmed
		}
		if _, err := openService(cmd); err != nil {
			return err
		}
		if err := jotter.Destroy(context.Background(), session.path, session.opts...); err != nil {
			return err
		}
		session.svc = nil
		fmt.Fprintln(cmd.OutOrStdout(), "Store destroyed.")
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema version of the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		v, err := svc.SchemaVersion(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting every note")

	rootCmd.AddCommand(destroyCmd)
	destroyCmd.Flags().BoolVar(&destroyYes, "yes", false, "Confirm deleting the store")

	rootCmd.AddCommand(schemaCmd)
}
