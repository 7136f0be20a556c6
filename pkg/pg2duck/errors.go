package pg2duck

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := extractor.Extract(ctx, config)
//	if errors.Is(err, pg2duck.ErrOutputNotEmpty) {
//	    // Output directory already holds a previous extraction
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutputNotEmpty indicates the extraction output directory already has entries.
	ErrOutputNotEmpty = errors.New("output directory is not empty")

	// ErrOutputNotDirectory indicates the extraction output path is not a directory.
	ErrOutputNotDirectory = errors.New("output path is not a directory")

	// ErrInvalidTableDirectory indicates a directory under the load input root
	// does not follow the <schema>.<table> naming contract.
	ErrInvalidTableDirectory = errors.New("invalid table directory name")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrCatalogQueryFailed indicates the source catalog could not be read.
	ErrCatalogQueryFailed = errors.New("catalog query failed")

	// ErrEngineFailed indicates an embedded engine statement failed in a way
	// that cannot be isolated to a single table.
	ErrEngineFailed = errors.New("engine statement failed")

	// ErrCredentialsUnavailable indicates no credential provider yielded a password.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// usageErrorMarkers are fragments of the messages cobra produces for argument
// and flag misuse.
var usageErrorMarkers = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrInvalidTableDirectory):
		return ExitConfigError
	case errors.Is(err, ErrOutputNotEmpty), errors.Is(err, ErrOutputNotDirectory):
		return ExitOutputDirError
	case errors.Is(err, ErrConnectionFailed), errors.Is(err, ErrCredentialsUnavailable):
		return ExitConnectionError
	case errors.Is(err, ErrCatalogQueryFailed), errors.Is(err, ErrEngineFailed):
		return ExitExecutionFailed
	}

	errStr := err.Error()
	for _, marker := range usageErrorMarkers {
		if strings.Contains(errStr, marker) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
