package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/schemas"
	bundled "github.com/jonathan/cv-tailor/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <json-file>",
	Short: "Validate an API response document against a JSON schema",
	Long: "Validate a JSON document against one of the bundled schemas (" +
		"upload_success, error_response, keywords_response) or a schema file on disk.",
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateSchema string

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Bundled schema name or path to a schema file (required)")
	_ = validateCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	jsonPath := args[0]

	var err error
	if slices.Contains(bundled.Names(), validateSchema) {
		var doc []byte
		doc, err = os.ReadFile(jsonPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", jsonPath, err)
		}
		err = schemas.ValidateNamed(validateSchema, doc)
	} else {
		err = schemas.ValidateJSON(validateSchema, jsonPath)
	}

	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed:\n%v\n", err)
		return fmt.Errorf("%s does not match %s", jsonPath, validateSchema)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}
