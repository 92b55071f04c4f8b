package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/validation"
)

var (
	createTitle   string
	createContent string
	createTags    []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd.InOrStdin(), createContent)
		if err != nil {
			return err
		}
		svc, err := openService(cmd)
		if err != nil {
			return err
		}

		if err := checkInput(svc, validation.Input{
			Title:   &createTitle,
			Content: &content,
			Tags:    &createTags,
		}); err != nil {
			return err
		}

		id, err := svc.Create(context.Background(), core.Draft{
			Title:   createTitle,
			Content: content,
			Tags:    createTags,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %d created.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createTitle, "title", "", "Note title")
	createCmd.Flags().StringVar(&createContent, "content", "", "Note content (- reads stdin)")
	createCmd.Flags().StringSliceVarP(&createTags, "tags", "t", nil, "Tags, comma separated or repeated")
}
