// Package services implements the two pg2duck stages.
//
// ExtractionService copies every table named by a catalog query from
// PostgreSQL into a <schema>.<table> directory of Parquet files, applying
// the column type policy on the way. LoadService reads such directories
// back and replaces one DuckDB table per directory.
//
// Both stages work through tables one at a time. Engine errors that only
// concern the current table are logged as warnings and the table is
// reported as skipped; anything else ends the run.
package services
