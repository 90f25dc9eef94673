package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/renderers/tui"
)

func newFillCommand(a *app) *cobra.Command {
	var (
		format      string
		maxAttempts int
	)

	cmd := &cobra.Command{
		Use:   "fill FILE",
		Short: "Fill a form interactively in the terminal",
		Long: `Walk a form in the terminal, prompting for each visible and enabled
field. Dependencies are re-evaluated after every answer and invalid answers are
re-prompted. The collected values are printed as JSON, form-encoded or plain
text.

Examples:
  formdef fill forms/pets.yaml
  formdef fill forms/pets.yaml --format form`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch tui.OutputFormat(format) {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
			def, err := readDefinition(args[0])
			if err != nil {
				return err
			}
			form, err := compiler.New(
				compiler.WithLocale(a.cfg.Render.Locale),
				compiler.WithLogger(a.logger),
			).Compile(def)
			if err != nil {
				return err
			}

			opts := []tui.Option{
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithOutput(cmd.ErrOrStderr()),
			}
			if a.driver != nil {
				opts = append(opts, tui.WithPromptDriver(a.driver))
			}
			out, err := tui.New(opts...).Render(cmd.Context(), form, render.RenderOptions{Locale: a.cfg.Render.Locale})
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", tui.DefaultMaxAttempts, "re-prompts allowed per field")
	return cmd
}
