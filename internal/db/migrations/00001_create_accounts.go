package migrations

// The password_hash/auth_provider pairing is enforced with a CHECK so that a
// local account always carries a hash and an external account never does.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAccounts, downCreateAccounts)
}

func upCreateAccounts(ctx context.Context, tx *sql.Tx) error {
	if err := execAll(ctx, tx, accountsUpStmts()); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

func downCreateAccounts(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx, []string{`DROP TABLE IF EXISTS accounts`})
}

const accountsProviderCheck = `CHECK (
        (auth_provider = 'local' AND password_hash IS NOT NULL) OR
        (auth_provider = 'external' AND password_hash IS NULL)
    )`

func accountsUpStmts() []string {
	switch dialect {
	case "postgres":
		return []string{`CREATE TABLE IF NOT EXISTS accounts (
    id            UUID PRIMARY KEY,
    username      VARCHAR(20) NOT NULL UNIQUE,
    email         VARCHAR(255) NOT NULL UNIQUE,
    password_hash TEXT,
    auth_provider VARCHAR(16) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ,
    deleted_at    TIMESTAMPTZ,
    ` + accountsProviderCheck + `
)`}
	case "mysql":
		return []string{`CREATE TABLE IF NOT EXISTS accounts (
    id            CHAR(36) PRIMARY KEY,
    username      VARCHAR(20) NOT NULL UNIQUE,
    email         VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255),
    auth_provider VARCHAR(16) NOT NULL,
    created_at    DATETIME(6) NOT NULL,
    updated_at    DATETIME(6),
    deleted_at    DATETIME(6),
    ` + accountsProviderCheck + `
)`}
	default: // sqlite3
		return []string{`CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    auth_provider TEXT NOT NULL,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME,
    deleted_at    DATETIME,
    ` + accountsProviderCheck + `
)`}
	}
}
