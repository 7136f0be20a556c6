package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassifier decides whether a failed attempt is worth repeating.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// transientSQLStates are SQLSTATE classes and codes a server returns while
// it is starting, shutting down or saturated.
var transientSQLStates = []string{
	"08",    // connection exception
	"53300", // too_many_connections
	"57P01", // admin_shutdown
	"57P02", // crash_shutdown
	"57P03", // cannot_connect_now
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"server closed the connection",
	"unexpected eof",
	"the database system is starting up",
}

// ConnectionErrorClassifier treats network failures and server-availability
// SQLSTATEs as transient. Authentication and configuration errors are fatal.
type ConnectionErrorClassifier struct{}

// NewConnectionErrorClassifier creates a new connection error classifier.
func NewConnectionErrorClassifier() *ConnectionErrorClassifier {
	return &ConnectionErrorClassifier{}
}

// IsTransient implements ErrorClassifier.
func (c *ConnectionErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, state := range transientSQLStates {
			if strings.HasPrefix(pgErr.Code, state) {
				return true
			}
		}
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
