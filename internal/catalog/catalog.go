package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Snapshot is an open read-only view of the source catalog.
// Close must be called to end the transaction.
type Snapshot struct {
	tx pgx.Tx
}

// Open starts the read-only SERIALIZABLE transaction backing a Snapshot.
func Open(ctx context.Context, db TxBeginner) (*Snapshot, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin catalog transaction: %w", pg2duck.ErrCatalogQueryFailed, err)
	}
	return &Snapshot{tx: tx}, nil
}

// Close ends the transaction. Nothing is written, so it always rolls back.
func (s *Snapshot) Close(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// ListTables runs query and returns one TableRef per row, in result order.
// The result must contain table_schema and table_name columns; other
// columns are ignored.
func (s *Snapshot) ListTables(ctx context.Context, query string) ([]pg2duck.TableRef, error) {
	rows, err := s.tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pg2duck.ErrCatalogQueryFailed, err)
	}
	defer rows.Close()

	dest, schema, name, err := tableDestinations(rows.FieldDescriptions())
	if err != nil {
		return nil, err
	}

	var tables []pg2duck.TableRef
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: %w", pg2duck.ErrCatalogQueryFailed, err)
		}
		tables = append(tables, pg2duck.TableRef{Schema: *schema, Name: *name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", pg2duck.ErrCatalogQueryFailed, err)
	}
	return tables, nil
}

// tableDestinations builds a Scan destination list that keeps the two
// required columns and skips the rest.
func tableDestinations(fields []pgconn.FieldDescription) ([]any, *string, *string, error) {
	var schema, name string
	dest := make([]any, len(fields))
	var haveSchema, haveName bool

	for i, f := range fields {
		switch f.Name {
		case columnTableSchema:
			dest[i] = &schema
			haveSchema = true
		case columnTableName:
			dest[i] = &name
			haveName = true
		}
	}

	if !haveSchema || !haveName {
		return nil, nil, nil, fmt.Errorf("%w: catalog query must return %s and %s columns",
			pg2duck.ErrCatalogQueryFailed, columnTableSchema, columnTableName)
	}
	return dest, &schema, &name, nil
}

type columnRow struct {
	ColumnName string `db:"column_name"`
	DataType   string `db:"data_type"`
}

// ListColumns returns ref's columns ordered by name. A table that does not
// exist yields no columns.
func (s *Snapshot) ListColumns(ctx context.Context, ref pg2duck.TableRef) ([]pg2duck.Column, error) {
	rows, err := s.tx.Query(ctx, queryColumns, ref.Schema, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", ref, err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[columnRow])
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", ref, err)
	}

	columns := make([]pg2duck.Column, len(found))
	for i, c := range found {
		columns[i] = pg2duck.Column{Name: c.ColumnName, DataType: c.DataType}
	}
	return columns, nil
}
