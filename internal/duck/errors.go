package duck

import (
	"errors"

	"github.com/marcboeker/go-duckdb"
)

// extractRecoverable are the engine error classes after which the extractor
// skips the table instead of aborting. Conversion errors come from values
// the engine cannot represent (e.g. out-of-range timestamps), IO errors from
// the scanner or writer (e.g. unsupported interval encodings).
var extractRecoverable = []duckdb.ErrorType{
	duckdb.ErrorTypeConversion,
	duckdb.ErrorTypeIO,
}

// loadRecoverable are the classes after which the loader leaves a table
// untouched: malformed or empty Parquet input, or no matching files.
var loadRecoverable = []duckdb.ErrorType{
	duckdb.ErrorTypeInvalidInput,
	duckdb.ErrorTypeIO,
}

// IsExtractRecoverable reports whether err isolates to the current table
// during extraction.
func IsExtractRecoverable(err error) bool {
	return hasErrorType(err, extractRecoverable)
}

// IsLoadRecoverable reports whether err isolates to the current table
// during load.
func IsLoadRecoverable(err error) bool {
	return hasErrorType(err, loadRecoverable)
}

func hasErrorType(err error, types []duckdb.ErrorType) bool {
	var duckErr *duckdb.Error
	if !errors.As(err, &duckErr) {
		return false
	}
	for _, t := range types {
		if duckErr.Type == t {
			return true
		}
	}
	return false
}
