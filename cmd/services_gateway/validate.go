package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/services-gateway/internal/config"
	"github.com/jonathan/services-gateway/internal/logging"
	"github.com/jonathan/services-gateway/internal/observability"
	"github.com/jonathan/services-gateway/internal/schemas"
	"github.com/jonathan/services-gateway/internal/store"
	"github.com/jonathan/services-gateway/internal/validation"
	schemafiles "github.com/jonathan/services-gateway/schemas"
	"github.com/spf13/cobra"
)

// builtinSchema selects the embedded ServicePage schema.
const builtinSchema = "builtin"

var (
	validateStoreDir string
	validateSchema   string
	validateWorkers  int
	validateVerbose  bool
	validateJSON     bool
	validateNoColor  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every page document in the store",
	Long: `Walks the services store and reports page documents that the HTML view
could not render. With --schema, documents are also checked against a JSON
Schema: "builtin" selects the embedded ServicePage schema, anything else is a
schema file path. Exits non-zero when any document fails.`,
	SilenceUsage: true,
	RunE:         runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateStoreDir, "store", "", "Root directory of the services store (default $SERVICES_DIR or \"services\")")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "JSON Schema to check documents against (file path or \"builtin\")")
	validateCmd.Flags().IntVarP(&validateWorkers, "workers", "w", 0, "Number of concurrent workers (default GOMAXPROCS)")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "List passing documents too")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
	rootCmd.AddCommand(validateCmd)
}

func loadSchema(name string) (*schemas.Schema, error) {
	switch name {
	case "":
		return nil, nil
	case builtinSchema:
		return schemas.Compile("builtin:service_page", schemafiles.ServicePage)
	default:
		return schemas.CompileFile(name)
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	storeDir := validateStoreDir
	if storeDir == "" {
		storeDir = config.GetEnvString("SERVICES_DIR", config.Defaults().StoreDir)
	}

	schema, err := loadSchema(validateSchema)
	if err != nil {
		return err
	}

	st, err := store.Open(storeDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	logger, err := logging.New(config.GetEnvString("LOG_LEVEL", "warn"), "console")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	report, err := validation.Validate(cmd.Context(), st, validation.Options{
		Schema:  schema,
		Workers: validateWorkers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if validateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		printer := observability.NewPrinter(out)
		if validateNoColor {
			printer.NoColor()
		}
		printer.PrintValidationReport(report, validateVerbose)
	}

	if !report.OK() {
		return fmt.Errorf("%d of %d documents failed validation", report.Failed(), len(report.Results))
	}
	return nil
}
