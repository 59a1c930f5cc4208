package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tether/internal/config"
	"tether/internal/network"
	"tether/internal/queue"
	"tether/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var assumeOnline bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle against the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd.Context(), true, func(cfg *config.Config, engine *syncer.Engine) error {
				status := network.Online()
				if !assumeOnline {
					probe := network.NewProbe(cfg.Sync.ProbeTarget, time.Duration(cfg.Sync.ProbeTimeoutSeconds)*time.Second)
					status = probe.Check(cmd.Context())
				}
				if !status.Connected {
					fmt.Fprintf(cmd.OutOrStdout(), "Offline (probe target %s unreachable); nothing synced\n", cfg.Sync.ProbeTarget)
					return nil
				}

				results, err := engine.Sync(cmd.Context(), status)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing pending")
					return nil
				}

				for _, result := range results {
					switch result.Status {
					case queue.StatusSuccess:
						fmt.Fprintf(cmd.OutOrStdout(), "✓ %s applied\n", result.ItemID)
					case queue.StatusConflict:
						fmt.Fprintf(cmd.OutOrStdout(), "✗ %s conflicted (%s); dropped\n", result.ItemID, result.ConflictReason)
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "! %s failed: %v\n", result.ItemID, result.Err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d processed, %d still queued\n", len(results), len(engine.Queue()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&assumeOnline, "assume-online", false, "Skip the connectivity probe")
	return cmd
}
