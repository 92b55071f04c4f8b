package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var (
	searchTags   []string
	searchMode   string
	searchLimit  int
	searchOffset int
	searchSort   string
	searchOrder  string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find notes by text and tags",
	Long: `Matches the query case-insensitively against title and content (and
tags with --mode include_tags). --tag keeps notes carrying any of the given
tags. Both filters combine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}

		opts := core.SearchOptions{
			Tags:   searchTags,
			Limit:  session.settings.Search.Limit,
			Offset: searchOffset,
			Mode:   session.settings.MatchMode(),
		}
		if len(args) == 1 {
			opts.Query = args[0]
		}
		if cmd.Flags().Changed("mode") {
			opts.Mode = core.ParseMatchMode(searchMode)
		}
		if cmd.Flags().Changed("limit") {
			opts.Limit = searchLimit
		}

		switch key := core.SortKey(strings.ToLower(searchSort)); key {
		case core.SortUpdatedAt, core.SortCreatedAt, core.SortTitle:
			opts.SortBy = key
		default:
			return fmt.Errorf("unknown sort key %q", searchSort)
		}
		switch order := core.SortOrder(strings.ToLower(searchOrder)); order {
		case core.OrderAsc, core.OrderDesc:
			opts.Order = order
		default:
			return fmt.Errorf("unknown order %q", searchOrder)
		}

		notes, err := svc.Search(context.Background(), opts)
		if err != nil {
			return err
		}
		if searchJSON {
			return printJSON(cmd.OutOrStdout(), notes)
		}
		return printNotes(cmd.OutOrStdout(), notes)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "Keep notes with any of these tags")
	searchCmd.Flags().StringVar(&searchMode, "mode", string(core.MatchTitleContent), "Match mode: title_content or include_tags")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (0 = all)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Results to skip")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(core.SortUpdatedAt), "Sort by updated_at, created_at or title")
	searchCmd.Flags().StringVar(&searchOrder, "order", string(core.OrderDesc), "Sort order: asc or desc")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
}
