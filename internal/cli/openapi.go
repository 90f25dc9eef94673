package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdef/pkg/openapi"
)

func newInspectOpenAPICommand(a *app) *cobra.Command {
	var (
		operationID string
		list        bool
		format      string
		noResolve   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect-openapi SOURCE",
		Short: "Derive a form definition from an OpenAPI operation",
		Long: `Read an OpenAPI 3 document from a file or http(s) URL and print the form
definition built from an operation's request body. Property formats map to
field kinds, enums become dropdowns and x-formgen-kind, x-formgen-label and
x-formgen-order extensions override the inferred metadata.

Examples:
  formdef inspect-openapi api.yaml --list
  formdef inspect-openapi api.yaml --operation createPet
  formdef inspect-openapi https://example.com/openapi.json --operation createPet --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := openapi.ReadSource(cmd.Context(), args[0], openapi.SourceOptions{
				HTTPClient: http.DefaultClient,
				Timeout:    30 * time.Second,
			})
			if err != nil {
				return err
			}
			a.logger.Debug("openapi source read", zap.String("source", args[0]), zap.Int("bytes", len(raw)))
			opts := []openapi.Option{openapi.WithReferenceResolution(!noResolve)}

			if list || operationID == "" {
				operations, err := openapi.Operations(cmd.Context(), raw, opts...)
				if err != nil {
					return err
				}
				for _, id := range openapi.OperationIDs(operations) {
					op := operations[id]
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%d fields\n", id, strings.ToUpper(op.Method), op.Path, len(op.Fields)); err != nil {
						return err
					}
				}
				return nil
			}

			def, err := openapi.BuildDefinition(cmd.Context(), raw, operationID, opts...)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(def)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(def); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&operationID, "operation", "", "operation id to convert")
	flags.BoolVar(&list, "list", false, "list operations instead of converting one")
	flags.StringVar(&format, "format", "yaml", "output format (yaml, json)")
	flags.BoolVar(&noResolve, "no-resolve", false, "skip $ref resolution and document validation")
	return cmd
}
