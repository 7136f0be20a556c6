package catalog

const (
	// queryColumns lists a table's columns with the type names the type
	// policy matches against.
	// Parameters: $1 schema, $2 table
	queryColumns = `
		SELECT column_name::text AS column_name, data_type::text AS data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY column_name
	`
)

// Columns a catalog query must return.
const (
	columnTableSchema = "table_schema"
	columnTableName   = "table_name"
)
