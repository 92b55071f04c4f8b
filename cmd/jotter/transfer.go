package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var (
	exportFormat string
	exportOutput string
	importFormat string
	importYes    bool
)

// errNotConfirmed guards the destructive commands.
var errNotConfirmed = errors.New("refusing to continue without --yes")

// resolveFormat prefers the flag, then the file extension, then the config.
func resolveFormat(flag, file, configured string) (core.Format, error) {
	switch {
	case flag != "":
		return core.ParseFormat(flag)
	case file != "" && file != "-":
		if f, err := core.ParseFormat(file); err == nil {
			return f, nil
		}
	}
	return core.ParseFormat(configured)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every note to JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		format, err := resolveFormat(exportFormat, exportOutput, session.settings.Export.Format)
		if err != nil {
			return err
		}

		data, err := svc.Export(context.Background(), format)
		if err != nil {
			return err
		}
		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s.\n", exportOutput)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace every note with the contents of an export",
	Long: `Import validates every record first; if any is invalid nothing changes.
Otherwise the current notes are replaced, so --yes is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !importYes {
			return errNotConfirmed
		}

		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}

		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		format, err := resolveFormat(importFormat, args[0], session.settings.Export.Format)
		if err != nil {
			return err
		}

		count, err := svc.Import(context.Background(), data, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes.\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json or yaml (default: from file extension or config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "json or yaml (default: from file extension or config)")
	importCmd.Flags().BoolVar(&importYes, "yes", false, "Confirm replacing all notes")
}
