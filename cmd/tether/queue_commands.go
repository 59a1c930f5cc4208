package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tether/internal/config"
	"tether/internal/queue"
	"tether/internal/syncer"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var payloadFlag string
	var labelFlag string

	cmd := &cobra.Command{
		Use:   "add <type> <entity-id>",
		Short: "Queue a mutation for later sync",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mutationType, entityID := args[0], args[1]
			payload, err := parsePayload(payloadFlag)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd.Context(), false, func(cfg *config.Config, engine *syncer.Engine) error {
				label := labelFlag
				if label == "" {
					label = displayLabel(cfg, mutationType)
				}
				item := queue.Item{
					ID:           queue.NewItemID(),
					Type:         mutationType,
					EntityID:     entityID,
					Payload:      payload,
					Timestamp:    time.Now().UTC(),
					Status:       queue.StatusPending,
					DisplayLabel: label,
				}
				if err := engine.AddItem(cmd.Context(), item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s for %s (%d item(s) pending)\n",
					mutationType, entityID, engine.PendingCount())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&payloadFlag, "payload", "p", "", "JSON payload for the mutation")
	cmd.Flags().StringVarP(&labelFlag, "label", "l", "", "Display label shown in listings")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued mutations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd.Context(), false, func(cfg *config.Config, engine *syncer.Engine) error {
				items := engine.Queue()
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					label := item.DisplayLabel
					if label == "" {
						label = displayLabel(cfg, item.Type)
					}
					rows = append(rows, []string{
						item.ID,
						label,
						item.EntityID,
						string(item.Status),
						strconv.Itoa(item.RetryCount),
						item.Timestamp.Local().Format("2006-01-02 15:04:05"),
					})
				}
				out := renderTable(
					[]string{"ID", "Mutation", "Entity", "Status", "Retries", "Queued At"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd.Context(), false, func(cfg *config.Config, engine *syncer.Engine) error {
				items := engine.Queue()
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				counts := make(map[queue.Status]int)
				for _, item := range items {
					counts[item.Status]++
				}
				rows := make([][]string, 0, len(counts))
				for _, status := range queue.AllStatuses() {
					if counts[status] == 0 {
						continue
					}
					rows = append(rows, []string{string(status), strconv.Itoa(counts[status])})
				}
				out := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a queued mutation by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd.Context(), false, func(cfg *config.Config, engine *syncer.Engine) error {
				if err := engine.RemoveItem(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued mutation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd.Context(), false, func(cfg *config.Config, engine *syncer.Engine) error {
				count := len(engine.Queue())
				if count > 0 && !force {
					return fmt.Errorf("queue holds %d item(s); pass --force to clear", count)
				}
				if err := engine.ClearQueue(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d item(s)\n", count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Clear without confirmation")
	return cmd
}
