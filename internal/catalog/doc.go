// Package catalog reads the list of tables to extract and their columns
// from the source database.
//
// All reads happen inside one read-only SERIALIZABLE transaction, so the
// table list and every column list come from the same snapshot.
package catalog
