// Package migrations contains the dialect-aware goose migrations for the
// accounts, links and sessions tables. The DDL differs by driver (partial
// unique indexes, timestamp and UUID column types), so every migration is a
// Go migration rather than a single cross-database SQL file.
package migrations

import (
	"context"
	"database/sql"
)

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// execAll runs each statement in order inside the migration transaction.
func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
