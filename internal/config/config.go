package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// DatabaseConfig is the "database" section of the extraction file.
type DatabaseConfig struct {
	Host          string `yaml:"host"`
	DatabaseName  string `yaml:"database_name"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username"`
	SSLMode       string `yaml:"sslmode,omitempty"`
	AuthMethod    string `yaml:"auth_method,omitempty"`
	AWSRegion     string `yaml:"aws_region,omitempty"`
	AzureTenantID string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID string `yaml:"azure_client_id,omitempty"`
}

// ExtractionParameters holds the two type-policy sets.
type ExtractionParameters struct {
	TypesToCastToString []string `yaml:"types_PostgreSQL_to_cast_to_string"`
	TypesToExclude      []string `yaml:"types_PostgreSQL_to_exclude"`
}

// ExtractionFile mirrors parameters.yml.
type ExtractionFile struct {
	OutputDirectory      string               `yaml:"output_directory"`
	ExtractionParameters ExtractionParameters `yaml:"extraction_parameters"`
	Database             DatabaseConfig       `yaml:"database"`
	CatalogQueryFile     string               `yaml:"catalog_query_file,omitempty"`
	ResultFile           string               `yaml:"result_file,omitempty"`
}

// PathsFile mirrors paths.yaml.
type PathsFile struct {
	InputDirectory string `yaml:"input_directory_parquet_files"`
	DuckDBPath     string `yaml:"duckdb_database_path"`
}

// LoadExtraction reads and decodes an extraction configuration file.
// Defaults are applied for the optional keys.
func LoadExtraction(path string) (*ExtractionFile, error) {
	var cfg ExtractionFile
	if err := decode(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.CatalogQueryFile == "" {
		cfg.CatalogQueryFile = pg2duck.DefaultCatalogQueryFile
	}
	if cfg.ResultFile == "" {
		cfg.ResultFile = pg2duck.DefaultResultFile
	}
	return &cfg, nil
}

// LoadPaths reads and decodes a load configuration file.
func LoadPaths(path string) (*PathsFile, error) {
	var cfg PathsFile
	if err := decode(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w: %w", path, ErrConfigNotFound, pg2duck.ErrInvalidConfig)
		}
		return err
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %v: %w", path, err, pg2duck.ErrInvalidConfig)
	}
	return nil
}
