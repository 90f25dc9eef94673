package cli

import (
	"encoding/json"
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/orchestrator"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/renderers/html"
	"github.com/goliatone/go-formdef/pkg/renderers/jsondoc"
	rendertemplate "github.com/goliatone/go-formdef/pkg/renderers/template"
)

type renderOptions struct {
	renderer     string
	output       string
	templatesDir string
	theme        string
	variant      string
	csrf         string
	errorsFile   string
}

func newRenderCommand(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a form definition",
		Long: `Compile a form definition and render it with the chosen renderer.

Renderers: html (default), json, template.

Examples:
  formdef render forms/pets.yaml
  formdef render forms/pets.yaml --renderer json -o pets.json
  formdef render forms/pets.yaml --renderer template --templates ./templates
  formdef render forms/pets.yaml --errors errors.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := readDefinition(args[0])
			if err != nil {
				return err
			}
			orch, err := a.renderOrchestrator(opts)
			if err != nil {
				return err
			}

			renderOpts := render.RenderOptions{
				Locale:    a.cfg.Render.Locale,
				CSRFToken: opts.csrf,
			}
			if opts.theme != "" || opts.variant != "" {
				renderOpts.Theme = &theme.RendererConfig{Theme: opts.theme, Variant: opts.variant}
			}
			if opts.errorsFile != "" {
				errs, err := readErrors(opts.errorsFile)
				if err != nil {
					return err
				}
				renderOpts.Errors = errs
			}

			name := opts.renderer
			if name == "" {
				name = a.cfg.Render.Default
			}
			body, err := orch.Generate(cmd.Context(), orchestrator.Request{
				Definition:    &def,
				Renderer:      name,
				RenderOptions: renderOpts,
			})
			if err != nil {
				return err
			}

			if opts.output != "" {
				if err := os.WriteFile(opts.output, body, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", opts.output)
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.renderer, "renderer", "r", "", "renderer name (default from render.default)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&opts.templatesDir, "templates", "", "template directory for the template renderer")
	flags.StringVar(&opts.theme, "theme", "", "theme name")
	flags.StringVar(&opts.variant, "variant", "", "theme variant")
	flags.StringVar(&opts.csrf, "csrf", "", "CSRF token emitted as a hidden input")
	flags.StringVar(&opts.errorsFile, "errors", "", "JSON file mapping question ids to error messages")
	return cmd
}

func (a *app) renderOrchestrator(opts renderOptions) (*orchestrator.Orchestrator, error) {
	var tplOpts []rendertemplate.Option
	if opts.templatesDir != "" {
		tplOpts = append(tplOpts, rendertemplate.WithTemplatesDir(opts.templatesDir))
	}
	tpl, err := rendertemplate.New(tplOpts...)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	registry.MustRegister(html.New())
	registry.MustRegister(jsondoc.New(jsondoc.WithIndent("  ")))
	registry.MustRegister(tpl)

	return orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(a.cfg.Render.Default),
		orchestrator.WithFormCompiler(compiler.New(
			compiler.WithLocale(a.cfg.Render.Locale),
			compiler.WithLogger(a.logger),
		)),
		orchestrator.WithLogger(a.logger),
	), nil
}

func readErrors(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read errors: %w", err)
	}
	var errs map[string][]string
	if err := json.Unmarshal(data, &errs); err != nil {
		return nil, fmt.Errorf("parse errors %s: %w", path, err)
	}
	return errs, nil
}
