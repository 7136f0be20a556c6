package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pg2duck/internal/retry"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// The source pool only serves catalog reads; table data flows through
// DuckDB's own connection.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute

	// tokenExpiryWarning is the remaining lifetime below which a warning is logged.
	tokenExpiryWarning = 5 * time.Minute
)

var _ pg2duck.Connector = (*Connector)(nil)

// Connector opens a pgx pool to the source database, authenticating with a
// CredentialProvider and retrying transient connection failures.
type Connector struct {
	config        *pg2duck.ConnectionConfig
	credentials   pg2duck.CredentialProvider
	logger        pg2duck.Logger
	retryExecutor *retry.Executor
}

// NewConnector creates a Connector with the default retry policy.
func NewConnector(config *pg2duck.ConnectionConfig, credentials pg2duck.CredentialProvider, logger pg2duck.Logger) *Connector {
	strategy := retry.NewExponentialBackoff(pg2duck.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(pg2duck.DefaultRetryInitialDelay),
		retry.WithMaxDelay(pg2duck.DefaultRetryMaxDelay),
	)
	executor := retry.NewExecutor(retry.NewConnectionErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("Connection attempt %d failed (%v), retrying in %v", attempt+1, err, delay.Round(time.Millisecond))
		})

	return &Connector{
		config:        config,
		credentials:   credentials,
		logger:        logger,
		retryExecutor: executor,
	}
}

// Connect implements pg2duck.Connector.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	password, expiresOn, err := c.credentials.Password(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", pg2duck.ErrConnectionFailed, c.credentials, err)
	}
	if !expiresOn.IsZero() && time.Until(expiresOn) < tokenExpiryWarning {
		c.logger.Warn("%s token expires in %v", c.credentials, time.Until(expiresOn).Round(time.Second))
	}

	withPassword := *c.config
	withPassword.Password = password

	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&withPassword))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, pg2duck.ErrInvalidConfig)
	}
	c.configurePool(poolConfig)

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
	}

	c.logger.Verbose("Connected to %s:%d/%s as %s", c.config.Host, c.config.Port, c.config.Database, c.config.Username)
	return pool, nil
}

func (c *Connector) configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("server notice: %s", notice.Message)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable
// guidance. The result always matches pg2duck.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port in parameters.yml
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - User does not have access to the database`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

Check database.database_name in parameters.yml or the -d flag.`, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but sslmode is "disable"
  - Certificate verification failed (try --sslmode=require)`

	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf(`too many connections to database "%s"

The server's max_connections limit is reached.`, database)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", pg2duck.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%w: %s\n\nOriginal error: %w", pg2duck.ErrConnectionFailed, hint, err)
}
