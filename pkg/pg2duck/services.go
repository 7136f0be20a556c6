package pg2duck

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Extractor copies source tables into per-table Parquet file sets.
type Extractor interface {
	// Extract runs the whole extraction. Tables failing with a recoverable
	// engine error are reported as skipped; any other error aborts the run.
	Extract(ctx context.Context, config ExtractionConfig) (*ExtractReport, error)
}

// Loader bulk-loads Parquet file sets into an embedded DuckDB database.
type Loader interface {
	// Load upserts one table per <schema>.<table> directory.
	Load(ctx context.Context, config LoadConfig) (*LoadReport, error)
}

// Connector is a unified interface for establishing database connections.
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// CredentialProvider supplies the password used for the source database,
// both for the catalog connection and for the engine's native scanner.
// Implementations must not log the secret.
type CredentialProvider interface {
	// Password returns the secret and its expiry. A zero expiry means the
	// secret does not expire.
	Password(ctx context.Context) (password string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets.
	String() string
}
