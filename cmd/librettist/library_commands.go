package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"
)

func newScaffoldCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "scaffold <base-libretto-key>",
		Short: "Generate a blank timing-overlay template from a base libretto",
		Long: "Generates one track entry per musical number, ready for an editor " +
			"to fill in track titles, durations and number coverage from an album listing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner(cmd.Context())
			if err != nil {
				return err
			}

			baseKey := args[0]
			if output == "" {
				output = path.Join(path.Dir(baseKey), "new.overlay.json")
			}
			if err := runner.Scaffold(cmd.Context(), baseKey, output); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Overlay key to write (defaults to new.overlay.json next to the base)")
	return cmd
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <overlay-key>",
		Short: "Check a timing overlay against its base libretto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.newRunner(cmd.Context())
			if err != nil {
				return err
			}

			errs, report, err := runner.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "coverage: %d/%d numbers covered, %d omitted, %d unaccounted\n",
				report.Covered, report.Total, report.Omitted, report.Unaccounted)

			if len(errs) > 0 {
				lines := make([]string, 0, len(errs))
				for _, e := range errs {
					lines = append(lines, "  - "+e.Error())
				}
				return fmt.Errorf("%d validation errors:\n%s", len(errs), strings.Join(lines, "\n"))
			}

			fmt.Fprintln(out, "overlay is valid")
			return nil
		},
	}
	return cmd
}
