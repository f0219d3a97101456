package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AuthProvider records how an account authenticates.
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderExternal AuthProvider = "external"
)

// Account represents a row in the accounts table.
type Account struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	AuthProvider AuthProvider   `db:"auth_provider"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
	DeletedAt    sql.NullTime   `db:"deleted_at"`
}

// IsLocal reports whether the account logs in with a password.
func (a *Account) IsLocal() bool {
	return a.AuthProvider == ProviderLocal
}

const accountColumns = `id, username, email, password_hash, auth_provider, created_at, updated_at, deleted_at`

type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *AccountStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new account. passwordHash must be non-empty for local
// accounts and empty for external ones; otherwise ErrProviderHashMismatch.
// Returns ErrDuplicate when the username or email is already taken.
func (s *AccountStore) Create(ctx context.Context, username, email, passwordHash string, provider AuthProvider, now time.Time) (*Account, error) {
	if (provider == ProviderLocal) != (passwordHash != "") {
		return nil, ErrProviderHashMismatch
	}

	a := &Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: sql.NullString{String: passwordHash, Valid: passwordHash != ""},
		AuthProvider: provider,
		CreatedAt:    now.UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO accounts (id, username, email, password_hash, auth_provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), a.ID, a.Username, a.Email, a.PasswordHash, a.AuthProvider, a.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// GetByID returns the account matching id, or ErrNotFound.
func (s *AccountStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

// GetByUsername returns the account matching username, or ErrNotFound.
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
}

// GetByEmail returns the account matching email, or ErrNotFound.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

// FindByUsernameOrEmail returns any account whose username matches username
// or whose email matches email, or ErrNotFound.
func (s *AccountStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ? OR email = ? LIMIT 1`, username, email)
}

// UsernameExists reports whether username is taken.
func (s *AccountStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.q(`SELECT COUNT(*) FROM accounts WHERE username = ?`), username)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *AccountStore) getOne(ctx context.Context, query string, args ...any) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a, s.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
