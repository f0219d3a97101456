package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Link represents a row in the links table. A non-null DeletedAt marks the
// row as soft-deleted.
type Link struct {
	ID         string       `db:"id"`
	Name       string       `db:"name"`
	Slug       string       `db:"slug"`
	RedirectTo string       `db:"redirect_to"`
	OwnerID    string       `db:"owner_id"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
	DeletedAt  sql.NullTime `db:"deleted_at"`
}

// IsDeleted reports whether the link has been soft-deleted.
func (l *Link) IsDeleted() bool {
	return l.DeletedAt.Valid
}

// Explicit column list: the MySQL schema carries a generated "active" column
// that must not be scanned.
const linkColumns = `id, name, slug, redirect_to, owner_id, created_at, updated_at, deleted_at`

// LinkStore is the sqlx-backed store for links.
type LinkStore struct {
	db *sqlx.DB
}

func NewLinkStore(db *sqlx.DB) *LinkStore {
	return &LinkStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *LinkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new link owned by ownerID. Returns ErrDuplicate when an
// active link already uses the name or slug.
func (s *LinkStore) Create(ctx context.Context, name, slug, redirectTo, ownerID string, now time.Time) (*Link, error) {
	l := &Link{
		ID:         uuid.New().String(),
		Name:       name,
		Slug:       slug,
		RedirectTo: redirectTo,
		OwnerID:    ownerID,
		CreatedAt:  now.UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO links (id, name, slug, redirect_to, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), l.ID, l.Name, l.Slug, l.RedirectTo, l.OwnerID, l.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return l, nil
}

// FindActiveByNameOrSlug returns any active link whose name equals name or
// whose slug equals slug, or ErrNotFound.
func (s *LinkStore) FindActiveByNameOrSlug(ctx context.Context, name, slug string) (*Link, error) {
	return s.getOne(ctx, `
		SELECT `+linkColumns+` FROM links
		WHERE (name = ? OR slug = ?) AND deleted_at IS NULL
		LIMIT 1
	`, name, slug)
}

// GetActiveByID returns the active link matching id, or ErrNotFound. A
// soft-deleted link is reported as not found.
func (s *LinkStore) GetActiveByID(ctx context.Context, id string) (*Link, error) {
	return s.getOne(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ? AND deleted_at IS NULL`, id)
}

// GetByID returns the link matching id whether or not it is soft-deleted.
func (s *LinkStore) GetByID(ctx context.Context, id string) (*Link, error) {
	return s.getOne(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
}

// ListActiveByOwner returns a page of ownerID's active links, newest first.
func (s *LinkStore) ListActiveByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*Link, error) {
	links := []*Link{}
	err := s.db.SelectContext(ctx, &links, s.q(`
		SELECT `+linkColumns+` FROM links
		WHERE owner_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Update persists name, slug, redirect_to and updated_at for l. Returns
// ErrDuplicate when the new name or slug collides with another active link.
func (s *LinkStore) Update(ctx context.Context, l *Link) (*Link, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE links SET name = ?, slug = ?, redirect_to = ?, updated_at = ? WHERE id = ?
	`), l.Name, l.Slug, l.RedirectTo, l.UpdatedAt, l.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, l.ID)
}

// SoftDelete marks the link deleted. An already-deleted link keeps its
// original deleted_at.
func (s *LinkStore) SoftDelete(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE links SET deleted_at = COALESCE(deleted_at, ?) WHERE id = ?
	`), now.UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CountActive returns the number of active links.
func (s *LinkStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM links WHERE deleted_at IS NULL`)
	return count, err
}

func (s *LinkStore) getOne(ctx context.Context, query string, args ...any) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// requireRow maps a zero-row UPDATE to ErrNotFound.
func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
