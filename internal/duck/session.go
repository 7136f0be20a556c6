package duck

import (
	"context"
	"database/sql"
	"fmt"

	// registers the "duckdb" database/sql driver
	_ "github.com/marcboeker/go-duckdb"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

const (
	// DriverName is the database/sql driver name registered by go-duckdb.
	DriverName = "duckdb"

	// InMemory opens a transient in-process database.
	InMemory = ""

	// PostgresExtension provides the native PostgreSQL scanner.
	PostgresExtension = "postgres"

	sourceSecretName = "pg2duck_source"
)

// Session is a DuckDB database handle with one dedicated connection.
type Session struct {
	db   *sql.DB
	conn *sql.Conn
	path string
}

// Open opens (or creates) the database at path and acquires a connection.
// Use InMemory for a transient database.
func Open(ctx context.Context, path string) (*Session, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database %q: %w", path, err)
	}

	s, err := NewSession(ctx, db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSession acquires a dedicated connection from db. The session takes
// ownership of db and closes it in Close.
func NewSession(ctx context.Context, db *sql.DB, path string) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire duckdb connection: %w", err)
	}
	return &Session{db: db, conn: conn, path: path}, nil
}

// Path returns the database path the session was opened with.
func (s *Session) Path() string {
	return s.path
}

// Close releases the connection and the database handle.
func (s *Session) Close() error {
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}

// Exec runs a single statement on the session connection.
func (s *Session) Exec(ctx context.Context, query string) error {
	_, err := s.conn.ExecContext(ctx, query)
	return err
}

// LoadExtension installs (if needed) and loads a DuckDB extension.
func (s *Session) LoadExtension(ctx context.Context, name string) error {
	if err := s.Exec(ctx, "INSTALL "+name); err != nil {
		return fmt.Errorf("failed to install extension %s: %w", name, err)
	}
	if err := s.Exec(ctx, "LOAD "+name); err != nil {
		return fmt.Errorf("failed to load extension %s: %w", name, err)
	}
	return nil
}

// AttachPostgres registers a temporary secret holding the source
// credentials and attaches the source database read-only under alias.
// The password lives only in the in-memory secret; it never appears in a
// scan expression.
func (s *Session) AttachPostgres(ctx context.Context, alias string, cfg *pg2duck.ConnectionConfig, password string) error {
	if err := s.Exec(ctx, postgresSecretSQL(sourceSecretName, cfg, password)); err != nil {
		return fmt.Errorf("failed to register source credentials: %w", err)
	}
	if err := s.Exec(ctx, attachPostgresSQL(alias, sourceSecretName, cfg.SSLMode)); err != nil {
		return fmt.Errorf("failed to attach source database %s on %s:%d: %w",
			cfg.Database, cfg.Host, cfg.Port, err)
	}
	return nil
}

// CreateStagingTable materializes selectList from source into a temporary table.
func (s *Session) CreateStagingTable(ctx context.Context, name string, selectList []string, source string) error {
	return s.Exec(ctx, createStagingTableSQL(name, selectList, source))
}

// CopyToParquet writes selectList from the relation named from into dir,
// one file per engine thread, overwriting existing files.
func (s *Session) CopyToParquet(ctx context.Context, selectList []string, from, dir string) error {
	return s.Exec(ctx, copyToParquetSQL(selectList, from, dir))
}

// DropTable drops a temporary table if it exists.
func (s *Session) DropTable(ctx context.Context, name string) error {
	return s.Exec(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(name))
}

// CreateParquetView binds a temporary view over every Parquet file in dir.
// Binding reads the file footers, so unreadable input fails here without
// touching any durable object.
func (s *Session) CreateParquetView(ctx context.Context, name, dir string) error {
	return s.Exec(ctx, createParquetViewSQL(name, dir))
}

// DropView drops a temporary view if it exists.
func (s *Session) DropView(ctx context.Context, name string) error {
	return s.Exec(ctx, "DROP VIEW IF EXISTS "+QuoteIdent(name))
}

// ReplaceTable creates ref's schema if needed and replaces ref with the
// contents of view, in one transaction. On error the previous table, if
// any, is left unchanged.
func (s *Session) ReplaceTable(ctx context.Context, ref pg2duck.TableRef, view string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range replaceTableSQL(ref, view) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", ref, err)
	}
	return nil
}

// CountRows returns the number of rows in ref.
func (s *Session) CountRows(ctx context.Context, ref pg2duck.TableRef) (int64, error) {
	var n int64
	err := s.conn.QueryRowContext(ctx, "SELECT count(*) FROM "+QualifiedName(ref)).Scan(&n)
	return n, err
}

// Columns returns the column names of ref in ordinal order.
func (s *Session) Columns(ctx context.Context, ref pg2duck.TableRef) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
		ref.Schema, ref.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
