package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"librettist/config"
	"librettist/internal/pipeline"
	"librettist/internal/storage"
)

// commandContext lazily loads configuration and the library store for
// the subcommands.
type commandContext struct {
	configPath string
	cfg        *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	path := c.configPath
	if path == "" {
		path = "./config/config.yaml"
		if _, err := os.Stat(path); os.IsNotExist(err) {
			c.cfg = config.Default()
			return c.cfg, nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) newStore(ctx context.Context) (storage.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewFromConfig(ctx, cfg.Storage)
}

func (c *commandContext) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "librettist",
		Short:         "Opera libretto timing pipeline",
		Long:          "librettist turns untimed librettos and hand-edited track scaffolds into timed playback librettos.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if cfg, err := ctx.ensureConfig(); err == nil {
				level = slog.Level(cfg.LogLevel)
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newEstimateCommand(ctx))
	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newScaffoldCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
