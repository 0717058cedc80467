package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/marmos91/dbrt/pkg/config"
	"github.com/spf13/cobra"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate a JSON schema for the client runtime configuration",
	Long: `schema reflects pkg/config.Config into a JSON schema, useful for:
  - IDE autocompletion (VS Code, IntelliJ, etc.) over the YAML config file
  - validating a config file before handing it to dbctl
  - generating documentation

Examples:
  # Print schema to stdout
  dbctl config schema

  # Save schema to file
  dbctl config schema --output config.schema.json`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "dbrt client configuration"
	schema.Description = "Configuration schema for the dbrt client runtime"

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0644); err != nil {
			return fmt.Errorf("config schema: write file: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schemaJSON))
	return err
}
