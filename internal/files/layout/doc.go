// Package layout implements the on-disk contract between extract and load:
// one directory per table, named <schema>.<table>, holding Parquet files.
//
// It also performs the output-directory preflight the extractor runs before
// touching any database.
package layout
