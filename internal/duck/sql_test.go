package duck

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"orders"`, QuoteIdent("orders"))
	assert.Equal(t, `"Order Lines"`, QuoteIdent("Order Lines"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, `'plain'`, QuoteLiteral("plain"))
	assert.Equal(t, `'it''s'`, QuoteLiteral("it's"))
	assert.Equal(t, `''`, QuoteLiteral(""))
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, `"sales"."orders"`, QualifiedName(pg2duck.TableRef{Schema: "sales", Name: "orders"}))
}

func TestRelationName_Unique(t *testing.T) {
	a := RelationName("extraction")
	b := RelationName("extraction")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "extraction_"))
	assert.NotContains(t, a, "-")
}

func TestCreateStagingTableSQL(t *testing.T) {
	got := createStagingTableSQL("extraction_1", []string{`"id"`, `CAST("ts" AS VARCHAR) AS "ts"`}, `"src"."public"."events"`)
	assert.Equal(t, `CREATE TEMP TABLE "extraction_1" AS SELECT "id", CAST("ts" AS VARCHAR) AS "ts" FROM "src"."public"."events"`, got)
}

func TestCopyToParquetSQL(t *testing.T) {
	got := copyToParquetSQL([]string{`"id"`, `"ts"`}, "extraction_1", "/data/out/public.events")
	assert.Equal(t,
		`COPY (SELECT "id", "ts" FROM "extraction_1") TO '/data/out/public.events' (FORMAT PARQUET, PER_THREAD_OUTPUT TRUE, OVERWRITE_OR_IGNORE 1)`,
		got)
}

func TestCreateParquetViewSQL(t *testing.T) {
	dir := filepath.Join("in", "sales.orders")
	got := createParquetViewSQL("verify_1", dir)
	assert.Equal(t, `CREATE TEMP VIEW "verify_1" AS SELECT * FROM read_parquet('`+filepath.Join(dir, "*.parquet")+`')`, got)
}

func TestReplaceTableSQL(t *testing.T) {
	got := replaceTableSQL(pg2duck.TableRef{Schema: "sales", Name: "orders"}, "verify_1")
	assert.Equal(t, []string{
		`CREATE SCHEMA IF NOT EXISTS "sales"`,
		`DROP TABLE IF EXISTS "sales"."orders"`,
		`CREATE TABLE "sales"."orders" AS SELECT * FROM "verify_1"`,
	}, got)
}

func TestPostgresSecretSQL(t *testing.T) {
	cfg := &pg2duck.ConnectionConfig{Host: "db", Port: 5433, Database: "app", Username: "etl"}

	got := postgresSecretSQL("s", cfg, "p'w")
	assert.Equal(t, `CREATE OR REPLACE TEMPORARY SECRET "s" (TYPE postgres, HOST 'db', PORT 5433, DATABASE 'app', USER 'etl', PASSWORD 'p''w')`, got)

	noPassword := postgresSecretSQL("s", cfg, "")
	assert.NotContains(t, noPassword, "PASSWORD")
}

func TestAttachPostgresSQL(t *testing.T) {
	assert.Equal(t, `ATTACH '' AS "src" (TYPE postgres, SECRET "s", READ_ONLY)`, attachPostgresSQL("src", "s", ""))
	assert.Equal(t, `ATTACH 'sslmode=require' AS "src" (TYPE postgres, SECRET "s", READ_ONLY)`, attachPostgresSQL("src", "s", "require"))
}
