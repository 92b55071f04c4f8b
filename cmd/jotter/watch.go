package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	jlifecycle "github.com/aretw0/jotter/pkg/adapters/lifecycle"
	"github.com/aretw0/jotter/pkg/core"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes to the store as they happen",
	Long: `Streams create, modify and delete events, including those made by other
processes, until interrupted. Only the fs adapter supports watching.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var types []core.EventType
		for _, t := range watchTypes {
			switch typ := core.EventType(strings.ToUpper(t)); typ {
			case core.EventCreate, core.EventModify, core.EventDelete:
				types = append(types, typ)
			default:
				return fmt.Errorf("unknown event type %q", t)
			}
		}

		svc, err := openService(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := svc.Watch(ctx)
		if err != nil {
			return err
		}
		source := jlifecycle.NewSource(events, types...)
		if err := source.Start(ctx); err != nil {
			return err
		}

		for e := range source.Events() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format(time.TimeOnly), e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchTypes, "type", nil, "Only these event types: create, modify, delete")
}
