package duck

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// QuoteIdent quotes an identifier for DuckDB and PostgreSQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QualifiedName returns "schema"."table".
func QualifiedName(ref pg2duck.TableRef) string {
	return QuoteIdent(ref.Schema) + "." + QuoteIdent(ref.Name)
}

// RelationName returns a unique unquoted name for a temporary relation.
func RelationName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ParquetGlob returns the pattern matching every Parquet file directly
// under dir.
func ParquetGlob(dir string) string {
	return filepath.Join(dir, "*.parquet")
}

func createStagingTableSQL(name string, selectList []string, source string) string {
	return "CREATE TEMP TABLE " + QuoteIdent(name) + " AS SELECT " +
		strings.Join(selectList, ", ") + " FROM " + source
}

func copyToParquetSQL(selectList []string, from, dir string) string {
	return "COPY (SELECT " + strings.Join(selectList, ", ") + " FROM " + QuoteIdent(from) + ") TO " +
		QuoteLiteral(dir) + " (FORMAT PARQUET, PER_THREAD_OUTPUT TRUE, OVERWRITE_OR_IGNORE 1)"
}

func createParquetViewSQL(name, dir string) string {
	return "CREATE TEMP VIEW " + QuoteIdent(name) + " AS SELECT * FROM read_parquet(" +
		QuoteLiteral(ParquetGlob(dir)) + ")"
}

func replaceTableSQL(ref pg2duck.TableRef, view string) []string {
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(ref.Schema),
		"DROP TABLE IF EXISTS " + QualifiedName(ref),
		"CREATE TABLE " + QualifiedName(ref) + " AS SELECT * FROM " + QuoteIdent(view),
	}
}

func postgresSecretSQL(name string, cfg *pg2duck.ConnectionConfig, password string) string {
	var b strings.Builder
	b.WriteString("CREATE OR REPLACE TEMPORARY SECRET ")
	b.WriteString(QuoteIdent(name))
	b.WriteString(" (TYPE postgres, HOST ")
	b.WriteString(QuoteLiteral(cfg.Host))
	b.WriteString(", PORT ")
	b.WriteString(strconv.Itoa(cfg.Port))
	b.WriteString(", DATABASE ")
	b.WriteString(QuoteLiteral(cfg.Database))
	b.WriteString(", USER ")
	b.WriteString(QuoteLiteral(cfg.Username))
	if password != "" {
		b.WriteString(", PASSWORD ")
		b.WriteString(QuoteLiteral(password))
	}
	b.WriteString(")")
	return b.String()
}

func attachPostgresSQL(alias, secret, sslMode string) string {
	dsn := ""
	if sslMode != "" {
		dsn = "sslmode=" + sslMode
	}
	return "ATTACH " + QuoteLiteral(dsn) + " AS " + QuoteIdent(alias) +
		" (TYPE postgres, SECRET " + QuoteIdent(secret) + ", READ_ONLY)"
}
