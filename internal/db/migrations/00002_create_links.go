package migrations

// name and slug are unique among rows whose deleted_at IS NULL, so a
// soft-deleted link never blocks reuse of its name or slug. SQLite and
// PostgreSQL express this with partial indexes. MySQL has none, so it gets a
// generated "active" column that is 1 for live rows and NULL otherwise;
// NULLs never collide in a MySQL unique key.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateLinks, downCreateLinks)
}

func upCreateLinks(ctx context.Context, tx *sql.Tx) error {
	if err := execAll(ctx, tx, linksUpStmts()); err != nil {
		return fmt.Errorf("create links table: %w", err)
	}
	return nil
}

func downCreateLinks(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx, []string{`DROP TABLE IF EXISTS links`})
}

func linksUpStmts() []string {
	switch dialect {
	case "postgres":
		return []string{
			`CREATE TABLE IF NOT EXISTS links (
    id          UUID PRIMARY KEY,
    name        VARCHAR(20) NOT NULL,
    slug        VARCHAR(20) NOT NULL,
    redirect_to TEXT NOT NULL,
    owner_id    UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE ON UPDATE CASCADE,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ,
    deleted_at  TIMESTAMPTZ
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS links_name_active_idx ON links (name) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS links_slug_active_idx ON links (slug) WHERE deleted_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS links_owner_created_idx ON links (owner_id, created_at)`,
		}
	case "mysql":
		return []string{
			`CREATE TABLE IF NOT EXISTS links (
    id          CHAR(36) PRIMARY KEY,
    name        VARCHAR(20) NOT NULL,
    slug        VARCHAR(20) NOT NULL,
    redirect_to TEXT NOT NULL,
    owner_id    CHAR(36) NOT NULL,
    created_at  DATETIME(6) NOT NULL,
    updated_at  DATETIME(6),
    deleted_at  DATETIME(6),
    active      TINYINT AS (IF(deleted_at IS NULL, 1, NULL)) STORED,
    UNIQUE KEY links_name_active_idx (name, active),
    UNIQUE KEY links_slug_active_idx (slug, active),
    KEY links_owner_created_idx (owner_id, created_at),
    CONSTRAINT fk_links_owner FOREIGN KEY (owner_id) REFERENCES accounts (id)
        ON DELETE CASCADE ON UPDATE CASCADE
)`,
		}
	default: // sqlite3
		return []string{
			`CREATE TABLE IF NOT EXISTS links (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    slug        TEXT NOT NULL,
    redirect_to TEXT NOT NULL,
    owner_id    TEXT NOT NULL REFERENCES accounts (id) ON DELETE CASCADE ON UPDATE CASCADE,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME,
    deleted_at  DATETIME
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS links_name_active_idx ON links (name) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS links_slug_active_idx ON links (slug) WHERE deleted_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS links_owner_created_idx ON links (owner_id, created_at)`,
		}
	}
}
