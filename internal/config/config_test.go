package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExtraction_AllFields(t *testing.T) {
	path := writeFile(t, "parameters.yml", `output_directory: ./parquet
extraction_parameters:
  types_PostgreSQL_to_cast_to_string:
    - timestamp with time zone
    - USER-DEFINED
  types_PostgreSQL_to_exclude:
    - interval
database:
  host: db.internal
  database_name: sales
  port: 5433
  username: etl
  sslmode: require
  auth_method: aws-iam
  aws_region: eu-west-1
catalog_query_file: queries/tables.sql
result_file: out/time.txt
`)

	cfg, err := LoadExtraction(path)
	require.NoError(t, err)

	assert.Equal(t, "./parquet", cfg.OutputDirectory)
	assert.Equal(t, []string{"timestamp with time zone", "USER-DEFINED"}, cfg.ExtractionParameters.TypesToCastToString)
	assert.Equal(t, []string{"interval"}, cfg.ExtractionParameters.TypesToExclude)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "sales", cfg.Database.DatabaseName)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "etl", cfg.Database.Username)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, "aws-iam", cfg.Database.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Database.AWSRegion)
	assert.Equal(t, "queries/tables.sql", cfg.CatalogQueryFile)
	assert.Equal(t, "out/time.txt", cfg.ResultFile)
}

func TestLoadExtraction_Defaults(t *testing.T) {
	path := writeFile(t, "parameters.yml", `output_directory: out
database:
  host: localhost
`)

	cfg, err := LoadExtraction(path)
	require.NoError(t, err)
	assert.Equal(t, pg2duck.DefaultCatalogQueryFile, cfg.CatalogQueryFile)
	assert.Equal(t, pg2duck.DefaultResultFile, cfg.ResultFile)
	assert.Empty(t, cfg.ExtractionParameters.TypesToExclude)
	assert.Equal(t, 0, cfg.Database.Port)
}

func TestLoadExtraction_FileNotFound(t *testing.T) {
	cfg, err := LoadExtraction(filepath.Join(t.TempDir(), "missing.yml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoadExtraction_InvalidYAML(t *testing.T) {
	path := writeFile(t, "parameters.yml", "{{invalid")

	cfg, err := LoadExtraction(path)
	assert.ErrorIs(t, err, pg2duck.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoadPaths(t *testing.T) {
	path := writeFile(t, "paths.yaml", `input_directory_parquet_files: ./parquet
duckdb_database_path: ./DuckDB/warehouse.duckdb
`)

	cfg, err := LoadPaths(path)
	require.NoError(t, err)
	assert.Equal(t, "./parquet", cfg.InputDirectory)
	assert.Equal(t, "./DuckDB/warehouse.duckdb", cfg.DuckDBPath)
}

func TestLoadPaths_EmptyFile(t *testing.T) {
	path := writeFile(t, "paths.yaml", "")

	cfg, err := LoadPaths(path)
	require.NoError(t, err)
	assert.Equal(t, PathsFile{}, *cfg)
}
