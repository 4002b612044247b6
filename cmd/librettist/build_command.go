package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"librettist/internal/builder"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var prefix string
	var workers int
	var quiet bool

	cmd := &cobra.Command{
		Use:   "build [overlay-key...]",
		Short: "Run the full pipeline for one or more recordings",
		Long: "Runs resolve, estimate and merge for each overlay and writes the " +
			"timed librettos. With no arguments, builds every overlay under --prefix.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.newStore(cmd.Context())
			if err != nil {
				return err
			}

			results, err := builder.New(store).Build(cmd.Context(), builder.Options{
				OverlayKeys:        args,
				Prefix:             prefix,
				MaxConcurrentTasks: workers,
				Quiet:              quiet,
			})
			if err != nil {
				return err
			}

			for _, key := range results {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Library prefix to search for overlays")
	cmd.Flags().IntVar(&workers, "workers", 4, "Maximum concurrent builds")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Disable the progress bar")
	return cmd
}
