package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"librettist/internal/pipeline"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve <overlay-key>",
		Short: "Fill in start segments for every track of a timing overlay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, "resolve", args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output key (defaults next to the overlay)")
	return cmd
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "estimate <overlay-key>",
		Short: "Estimate per-segment start times from track durations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, "estimate", args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output key (defaults next to the overlay)")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge <overlay-key>",
		Short: "Merge a timed overlay with its base libretto into a timed libretto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, "merge", args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output key (defaults next to the overlay)")
	return cmd
}

func runStage(ctx *commandContext, cmd *cobra.Command, stage, overlayKey, output string) error {
	runner, err := ctx.newRunner(cmd.Context())
	if err != nil {
		return err
	}
	if output == "" {
		output = pipeline.StageOutputKey(stage, overlayKey)
	}

	switch stage {
	case "resolve":
		err = runner.Resolve(cmd.Context(), overlayKey, output)
	case "estimate":
		err = runner.Estimate(cmd.Context(), overlayKey, output)
	case "merge":
		err = runner.Merge(cmd.Context(), overlayKey, output)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
