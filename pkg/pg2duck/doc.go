// Package pg2duck defines the public types, interfaces and error taxonomy of
// the PostgreSQL to Parquet to DuckDB pipeline.
//
// The two stages communicate only through the filesystem: the extractor
// writes one directory per table named "<schema>.<table>" holding Parquet
// files, and the loader turns each such directory into a DuckDB table.
package pg2duck
