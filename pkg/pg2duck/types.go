package pg2duck

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TableRef identifies a table by schema and name.
type TableRef struct {
	Schema string
	Name   string
}

// String returns the dotted form "<schema>.<table>", which is also the
// directory name used for the table's Parquet file set.
func (t TableRef) String() string {
	return t.Schema + TableDirSeparator + t.Name
}

// ColumnAction is the type-policy decision for a single source column.
type ColumnAction int

const (
	ActionInclude      ColumnAction = iota // copy as-is
	ActionCastToString                     // copy as VARCHAR
	ActionExclude                          // leave out of the output
)

// String returns a human-readable string representation of the ColumnAction.
func (a ColumnAction) String() string {
	switch a {
	case ActionInclude:
		return "include"
	case ActionCastToString:
		return "cast-to-string"
	case ActionExclude:
		return "exclude"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// Column describes a source column and the action applied to it.
type Column struct {
	Name     string
	DataType string
	Action   ColumnAction
}

// ConnectionConfig represents resolved PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM parameters (used when AuthMethod is AuthMethodAWSIAM)
	AWSRegion string

	// Azure Entra ID parameters (used when AuthMethod is AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used,
	// otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod maps the configuration spelling of an auth method.
// An empty string selects standard password authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws-iam", "aws_iam", "aws":
		return AuthMethodAWSIAM, nil
	case "azure", "azure-entra-id", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// ExtractionConfig contains all parameters needed for an extraction run.
type ExtractionConfig struct {
	// OutputDir receives one <schema>.<table> directory per extracted table.
	// It must not exist or be empty.
	OutputDir string

	// CatalogQuery is the SQL text enumerating the tables to extract.
	// It must return table_schema and table_name columns.
	CatalogQuery string

	// CastToString lists source data types copied as VARCHAR.
	CastToString []string

	// Exclude lists source data types left out of the output.
	Exclude []string

	// ResultFile receives the total elapsed seconds. Empty disables it.
	ResultFile string

	// Connection holds the source database parameters. The password is
	// supplied separately through a CredentialProvider.
	Connection *ConnectionConfig
}

// Validate checks if the ExtractionConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *ExtractionConfig) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("output_directory is required: %w", ErrInvalidConfig))
	}
	if strings.TrimSpace(c.CatalogQuery) == "" {
		errs = append(errs, fmt.Errorf("catalog query is empty: %w", ErrInvalidConfig))
	}
	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("database connection is required: %w", ErrInvalidConfig))
	} else {
		if c.Connection.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required: %w", ErrInvalidConfig))
		}
		if c.Connection.Database == "" {
			errs = append(errs, fmt.Errorf("database.database_name is required: %w", ErrInvalidConfig))
		}
		if c.Connection.Username == "" {
			errs = append(errs, fmt.Errorf("database.username is required: %w", ErrInvalidConfig))
		}
		if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
			errs = append(errs, fmt.Errorf("database.port %d is out of range: %w", c.Connection.Port, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// LoadConfig contains all parameters needed for a load run.
type LoadConfig struct {
	// InputDir holds one <schema>.<table> directory per table.
	InputDir string

	// DatabasePath is the DuckDB database file, created if missing.
	DatabasePath string
}

// Validate checks if the LoadConfig has all required fields.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, fmt.Errorf("input_directory_parquet_files is required: %w", ErrInvalidConfig))
	}
	if c.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("duckdb_database_path is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// TableStatus is the per-table result of a run.
type TableStatus int

const (
	TableDone TableStatus = iota
	TableSkipped
)

func (s TableStatus) String() string {
	if s == TableDone {
		return "done"
	}
	return "skipped"
}

// TableOutcome records what happened to one table.
type TableOutcome struct {
	Table  TableRef
	Status TableStatus
	// Columns is the number of output columns (extract) or zero (load).
	Columns int
	// Err is the recoverable error that caused a skip.
	Err error
}

// ExtractReport summarizes an extraction run.
type ExtractReport struct {
	Tables   []TableOutcome
	Duration time.Duration
}

// LoadReport summarizes a load run.
type LoadReport struct {
	Tables []TableOutcome
}

// CountStatus returns how many outcomes have the given status.
func CountStatus(outcomes []TableOutcome, status TableStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
