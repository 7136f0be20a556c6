package pg2duck

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed (individual tables may have been skipped)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or directory layout
	ExitConnectionError = 11 // Failed to connect or authenticate
	ExitOutputDirError  = 12 // Output directory exists and is unusable
	ExitExecutionFailed = 13 // Catalog query or engine statement failed
)

const (
	// DefaultExtractionConfigFile is read by `pg2duck extract` when --config is not given.
	DefaultExtractionConfigFile = "parameters.yml"

	// DefaultLoadConfigFile is read by `pg2duck load` when --config is not given.
	DefaultLoadConfigFile = "paths.yaml"

	// DefaultCatalogQueryFile holds the query enumerating tables to extract.
	DefaultCatalogQueryFile = "fetch_tables_to_extract.sql"

	// DefaultResultFile receives the total extraction time in seconds.
	DefaultResultFile = "DuckDB/exec_time.txt"

	// DefaultPort is the PostgreSQL port used when none is configured.
	DefaultPort = 5432

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between connection retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the maximum number of connection retries.
	DefaultRetryMaxAttempts = 3

	// TableDirSeparator separates schema and table in an output directory name.
	TableDirSeparator = "."
)
