// Package duck wraps the embedded DuckDB engine used by both pipeline stages.
//
// A Session owns one database handle and one dedicated connection. Temporary
// relations, loaded extensions and secrets are connection-scoped in DuckDB,
// so every statement of a run goes through the same connection. Callers
// must Close the session on every exit path.
package duck
