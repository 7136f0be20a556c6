package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pg2duck/internal/config"
	"github.com/vvka-141/pg2duck/internal/db"
	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/logging"
	"github.com/vvka-141/pg2duck/internal/services"
	"github.com/vvka-141/pg2duck/internal/tui"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Copy PostgreSQL tables into per-table Parquet directories",
	Long: `Extract runs the catalog query against the source database and copies each
table it returns into <output_directory>/<schema>.<table>/ as Parquet files.

Columns are handled by their information_schema data_type:
  types_PostgreSQL_to_cast_to_string   copied as VARCHAR
  types_PostgreSQL_to_exclude          left out (wins over casting)
  anything else                        copied unchanged

The output directory must be empty or not exist yet. A table that fails
with a conversion or I/O error is skipped with a warning and its partial
output removed. The total run time in seconds is written to result_file.

Password Authentication:
  For security, password is NOT accepted as a flag or in parameters.yml. Use one of:
    1. $PGPASSWORD environment variable (or a .env file)
    2. .pgpass file (PostgreSQL standard: chmod 600 ~/.pgpass)
    3. The interactive prompt
  auth_method: aws-iam or azure in parameters.yml switches to token authentication.

Examples:
  # Use ./parameters.yml and ./fetch_tables_to_extract.sql
  pg2duck extract

  # Override connection settings
  pg2duck extract -c prod.yml -h db.internal -U etl -d shop

  # Non-interactive run from a scheduler
  PGPASSWORD=... PG2DUCK_NON_INTERACTIVE=1 pg2duck extract`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

type extractFlagValues struct {
	configPath, catalogQuery, resultFile string
	host, username, database, sslMode    string
	port                                 int
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractFlags.configPath, "config", "c", pg2duck.DefaultExtractionConfigFile,
		"Extraction configuration file")
	extractCmd.Flags().StringVar(&extractFlags.catalogQuery, "catalog-query", "",
		"SQL file returning table_schema and table_name of the tables to extract\n"+
			"(default: catalog_query_file from the configuration, or "+pg2duck.DefaultCatalogQueryFile+")")
	extractCmd.Flags().StringVar(&extractFlags.resultFile, "result-file", "",
		"File receiving the total run time in seconds (default: result_file, or "+pg2duck.DefaultResultFile+")")

	// Precedence: flag > environment variable > parameters.yml > default
	extractCmd.Flags().StringVarP(&extractFlags.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > database.host > localhost")
	extractCmd.Flags().IntVarP(&extractFlags.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > database.port > 5432")
	extractCmd.Flags().StringVarP(&extractFlags.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or database.username)")
	extractCmd.Flags().StringVarP(&extractFlags.database, "database", "d", "",
		"Source database (default: $PGDATABASE or database.database_name)")
	extractCmd.Flags().StringVar(&extractFlags.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	_ = extractCmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
}

// buildExtractionConfig merges the configuration file, flags and
// environment into an ExtractionConfig. The catalog query file is read here
// so a missing file is reported before anything else happens.
func buildExtractionConfig(fsys filesystem.FileSystem, env *db.EnvVars) (pg2duck.ExtractionConfig, error) {
	file, err := config.LoadExtraction(extractFlags.configPath)
	if err != nil {
		return pg2duck.ExtractionConfig{}, fmt.Errorf("failed to load %s: %w", extractFlags.configPath, err)
	}

	connConfig, err := db.ResolveConnectionParams(&db.ConnFlags{
		Host:     extractFlags.host,
		Port:     extractFlags.port,
		Username: extractFlags.username,
		Database: extractFlags.database,
		SSLMode:  extractFlags.sslMode,
	}, env, &file.Database)
	if err != nil {
		return pg2duck.ExtractionConfig{}, err
	}

	queryPath := file.CatalogQueryFile
	if extractFlags.catalogQuery != "" {
		queryPath = extractFlags.catalogQuery
	}
	query, err := fsys.ReadFile(queryPath)
	if err != nil {
		return pg2duck.ExtractionConfig{}, fmt.Errorf("failed to read catalog query %s: %v: %w", queryPath, err, pg2duck.ErrInvalidConfig)
	}

	resultFile := file.ResultFile
	if extractFlags.resultFile != "" {
		resultFile = extractFlags.resultFile
	}

	return pg2duck.ExtractionConfig{
		OutputDir:    file.OutputDirectory,
		CatalogQuery: string(query),
		CastToString: file.ExtractionParameters.TypesToCastToString,
		Exclude:      file.ExtractionParameters.TypesToExclude,
		ResultFile:   resultFile,
		Connection:   connConfig,
	}, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsys := filesystem.NewOSFileSystem()

	_ = godotenv.Load()
	env := db.LoadFromEnvironment()

	config, err := buildExtractionConfig(fsys, env)
	if err != nil {
		return err
	}

	conn := config.Connection
	logger.Verbose("Connection resolved: host=%s port=%d user=%s database=%s sslmode=%s auth=%s",
		conn.Host, conn.Port, conn.Username, conn.Database, conn.SSLMode, conn.AuthMethod)

	interactive := tui.IsInteractive()
	credentials, err := db.NewCredentialProvider(conn, db.ProviderOptions{
		Interactive: interactive,
		PassFile:    env.PGPASSFILE,
	})
	if err != nil {
		return err
	}

	ctx, cancel := interruptibleContext("extraction")
	defer cancel()

	extractor := services.NewExtractionService(fsys, credentials, logger)
	report, err := extractor.Extract(ctx, config)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if interactive {
		fmt.Fprintln(os.Stderr, tui.RenderExtractSummary(report))
	}
	return nil
}
