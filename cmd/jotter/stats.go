package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd)
		if err != nil {
			return err
		}
		st, err := svc.Stats(context.Background())
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(cmd.OutOrStdout(), st)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "notes:         %d\n", st.TotalNotes)
		fmt.Fprintf(w, "tags:          %d\n", st.TotalTags)
		fmt.Fprintf(w, "notes per tag: %.2f\n", st.AverageNotesPerTag)
		if st.LastUpdated != nil {
			fmt.Fprintf(w, "last updated:  %s\n", st.LastUpdated.Local().Format(time.DateTime))
		} else {
			fmt.Fprintln(w, "last updated:  never")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}
