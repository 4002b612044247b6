package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"librettist/internal/acquire"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var source string
	var langs string
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <opera-slug>",
		Short: "Fetch libretto text from a public libretto site",
		Long: "Fetches libretto text and writes plain-text files plus provenance " +
			"into the library under --output. Sources: opera-arias (one language " +
			"per page) and murashev (side-by-side bilingual table).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.newStore(cmd.Context())
			if err != nil {
				return err
			}

			operaSlug := args[0]
			dir := output
			if dir == "" {
				dir = path.Join("raw", path.Base(operaSlug))
			}

			codes := strings.Split(langs, ",")
			for i := range codes {
				codes[i] = strings.TrimSpace(codes[i])
			}

			switch source {
			case "opera-arias":
				src := acquire.NewOperaAriasSource()
				for _, lang := range codes {
					acquired, err := src.Acquire(operaSlug, lang)
					if err != nil {
						return err
					}
					if err := acquire.WriteText(cmd.Context(), store, dir, acquired); err != nil {
						return err
					}
				}
			case "murashev":
				if len(codes) != 2 {
					return fmt.Errorf("murashev needs exactly two languages, got %q", langs)
				}
				acquired, err := acquire.NewMurashevSource().Acquire(operaSlug, codes[0], codes[1])
				if err != nil {
					return err
				}
				if err := acquire.WriteBilingual(cmd.Context(), store, dir, acquired); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown source: %s", source)
			}

			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "opera-arias", "Libretto site: opera-arias or murashev")
	cmd.Flags().StringVar(&langs, "lang", "it,en", "Comma-separated language codes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Library directory to write into (defaults to raw/<opera>)")
	return cmd
}
