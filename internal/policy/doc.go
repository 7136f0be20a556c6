// Package policy classifies source columns by declared data type.
//
// Each column is either copied as-is, copied as VARCHAR, or left out of the
// extracted Parquet files. Exclusion takes precedence over casting, and types
// listed in neither set are copied unchanged.
package policy
