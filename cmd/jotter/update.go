package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var (
	updateTitle   string
	updateContent string
	updateTags    []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the title, content or tags of a note",
	Long: `Only the flags given are changed. --tags "" removes every tag.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var patch core.Patch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &updateTitle
		}
		if flags.Changed("content") {
			content, err := readContent(cmd.InOrStdin(), updateContent)
			if err != nil {
				return err
			}
			patch.Content = &content
		}
		if flags.Changed("tags") {
			tags := append([]string{}, updateTags...)
			patch.Tags = &tags
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --title, --content or --tags")
		}

		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		if err := svc.Update(context.Background(), id, patch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %d updated.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New content (- reads stdin)")
	updateCmd.Flags().StringSliceVarP(&updateTags, "tags", "t", nil, "New tags, replacing the old ones")
}
