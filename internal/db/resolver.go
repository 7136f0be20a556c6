package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pg2duck/internal/config"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// ConnFlags holds connection parameters given on the command line, using
// the PostgreSQL client flag names (-h, -p, -U, -d).
//
// There is no password flag. Use $PGPASSWORD, ~/.pgpass or the
// interactive prompt instead.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// EnvVars represents the environment variables consulted during resolution.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	PGPASSFILE   string
	DATABASE_URL string

	AWS_REGION string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		PGPASSFILE:          os.Getenv("PGPASSFILE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams merges connection parameters. For each field the
// first non-empty value wins:
//
//  1. command-line flag
//  2. PG* environment variable
//  3. DATABASE_URL
//  4. the database section of parameters.yml
//  5. default (localhost, 5432, sslmode=prefer)
//
// The password only comes from $PGPASSWORD or DATABASE_URL; everything else
// is left to the credential provider.
func ResolveConnectionParams(flags *ConnFlags, env *EnvVars, file *config.DatabaseConfig) (*pg2duck.ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	if file == nil {
		file = &config.DatabaseConfig{}
	}

	dsn := &pg2duck.ConnectionConfig{AdditionalParams: map[string]string{}}
	if env.DATABASE_URL != "" {
		if err := parseInto(dsn, env.DATABASE_URL); err != nil {
			return nil, fmt.Errorf("invalid $DATABASE_URL: %v: %w", err, pg2duck.ErrInvalidConfig)
		}
	}

	cfg := &pg2duck.ConnectionConfig{
		Host:             first(flags.Host, env.PGHOST, dsn.Host, file.Host, "localhost"),
		Database:         first(flags.Database, env.PGDATABASE, dsn.Database, file.DatabaseName),
		Username:         first(flags.Username, env.PGUSER, dsn.Username, file.Username),
		Password:         first(env.PGPASSWORD, dsn.Password),
		SSLMode:          first(flags.SSLMode, env.PGSSLMODE, dsn.SSLMode, file.SSLMode, "prefer"),
		AppName:          first(dsn.AppName, "pg2duck"),
		ConnectTimeout:   dsn.ConnectTimeout,
		AdditionalParams: dsn.AdditionalParams,
	}

	port, err := resolvePort(flags.Port, env.PGPORT, dsn.Port, file.Port)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	cfg.AuthMethod, err = pg2duck.ParseAuthMethod(file.AuthMethod)
	if err != nil {
		return nil, err
	}
	switch cfg.AuthMethod {
	case pg2duck.AuthMethodAWSIAM:
		cfg.AWSRegion = first(env.AWS_REGION, file.AWSRegion)
	case pg2duck.AuthMethodAzureEntraID:
		cfg.AzureTenantID = first(env.AZURE_TENANT_ID, file.AzureTenantID)
		cfg.AzureClientID = first(env.AZURE_CLIENT_ID, file.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}

	return cfg, nil
}

func resolvePort(flag int, env string, dsnPort int, file int) (int, error) {
	switch {
	case flag != 0:
		return flag, nil
	case env != "":
		port, err := strconv.Atoi(env)
		if err != nil {
			return 0, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env, pg2duck.ErrInvalidConfig)
		}
		return port, nil
	case dsnPort != 0:
		return dsnPort, nil
	case file != 0:
		return file, nil
	default:
		return pg2duck.DefaultPort, nil
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
