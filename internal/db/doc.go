// Package db resolves PostgreSQL connection parameters, supplies the
// source password through pluggable credential providers, and opens the
// pgx pool used to read the source catalog.
package db
