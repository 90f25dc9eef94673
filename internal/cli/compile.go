package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/compiler"
)

func newCompileCommand(a *app) *cobra.Command {
	var hashOnly bool

	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a form definition and print the compiled JSON",
		Long: `Compile a JSON or YAML form definition and print the compiled form.

Configuration, reference and cycle errors are reported with the offending
question id.

Examples:
  formdef compile forms/pets.yaml
  formdef compile forms/pets.yaml --hash`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := readDefinition(args[0])
			if err != nil {
				return err
			}
			if hashOnly {
				hash, err := compiler.Hash(def)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
				return err
			}

			form, err := compiler.New(
				compiler.WithLocale(a.cfg.Render.Locale),
				compiler.WithLogger(a.logger),
			).Compile(def)
			if err != nil {
				return fmt.Errorf("compile %s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(form)
		},
	}
	cmd.Flags().BoolVar(&hashOnly, "hash", false, "print the stable definition hash instead of compiling")
	return cmd
}
