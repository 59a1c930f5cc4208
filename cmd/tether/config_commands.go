package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tether/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "Target path for the sample config")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "storage backend: %s\n", cfg.Storage.Backend)
			fmt.Fprintf(out, "snapshot path:   %s\n", cfg.SnapshotPath())
			fmt.Fprintf(out, "remote:          %s\n", valueOrUnset(cfg.Remote.BaseURL))
			fmt.Fprintf(out, "max retries:     %d\n", cfg.Sync.MaxRetries)
			fmt.Fprintf(out, "sync interval:   %ds\n", cfg.Sync.IntervalSeconds)
			fmt.Fprintf(out, "probe target:    %s\n", cfg.Sync.ProbeTarget)
			fmt.Fprintln(out, "mutation types:")
			for _, m := range cfg.Mutations {
				opposing := ""
				if m.OpposingType != "" {
					opposing = fmt.Sprintf(", cancels %s", m.OpposingType)
				}
				fmt.Fprintf(out, "  %-24s %s%s\n", m.Type, m.Strategy, opposing)
			}
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "validate [path]",
		Short:       "Validate a configuration file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := ""
			if len(args) == 1 {
				configPath = args[0]
			}
			cfg, resolved, exists, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !exists {
				fmt.Fprintf(cmd.OutOrStdout(), "No config at %s; defaults are valid\n", resolved)
				return nil
			}
			if _, err := cfg.Registry(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d mutation type(s))\n", resolved, len(cfg.Mutations))
			return nil
		},
	}
	return cmd
}

func valueOrUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return value
}
