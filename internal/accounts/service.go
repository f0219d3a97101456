// Package accounts implements registration, password login, external (OIDC)
// login and the caller's own profile.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/metrics"
	"github.com/joestump/linkhub/internal/store"
	"github.com/joestump/linkhub/internal/validate"
)

var (
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrProviderNotValid  = errors.New("account uses a different auth provider")
	ErrBadCredentials    = errors.New("bad credentials")
)

const (
	usernameMin = 6
	usernameMax = 20
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"min=6,max=20"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=5,max=25"`
}

// LoginInput is the body of a password login request.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountView is the public projection of an account. It never carries the
// password hash.
type AccountView struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	AuthProvider string     `json:"auth_provider"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func viewOf(a *store.Account) *AccountView {
	v := &AccountView{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		AuthProvider: string(a.AuthProvider),
		CreatedAt:    a.CreatedAt,
	}
	if a.UpdatedAt.Valid {
		t := a.UpdatedAt.Time
		v.UpdatedAt = &t
	}
	return v
}

// Service composes the account store with password hashing and token
// issuance. Passwords are keyed with hashSecret; tokens are signed with
// tokenSecret.
type Service struct {
	accounts    *store.AccountStore
	hashSecret  []byte
	tokenSecret []byte
	log         *zap.Logger
	now         func() time.Time
}

func NewService(accounts *store.AccountStore, hashSecret, tokenSecret []byte, log *zap.Logger) *Service {
	return &Service{
		accounts:    accounts,
		hashSecret:  hashSecret,
		tokenSecret: tokenSecret,
		log:         log,
		now:         time.Now,
	}
}

// Register creates a local account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	token, err := s.register(ctx, in)
	record("register", err)
	return token, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", err
	}

	_, err := s.accounts.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return "", ErrAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("check existing account: %w", err)
	}

	hash, err := auth.HashPassword(s.hashSecret, []byte(in.Password))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	acct, err := s.accounts.Create(ctx, in.Username, in.Email, hash, store.ProviderLocal, now)
	if errors.Is(err, store.ErrDuplicate) {
		return "", ErrAlreadyRegistered
	}
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account registered", zap.String("account_id", acct.ID))
	return s.issue(acct.ID, now)
}

// Login checks a local account's password and returns a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	token, err := s.login(ctx, in)
	record("login", err)
	return token, err
}

func (s *Service) login(ctx context.Context, in LoginInput) (string, error) {
	acct, err := s.accounts.GetByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("look up account: %w", err)
	}

	if !acct.IsLocal() || !acct.PasswordHash.Valid {
		return "", ErrProviderNotValid
	}

	ok, err := auth.VerifyPassword(s.hashSecret, []byte(in.Password), acct.PasswordHash.String)
	if err != nil {
		return "", fmt.Errorf("verify password for %s: %w", acct.ID, err)
	}
	if !ok {
		return "", ErrBadCredentials
	}
	return s.issue(acct.ID, s.now())
}

// Me returns the public view of accountID.
func (s *Service) Me(ctx context.Context, accountID string) (*AccountView, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	return viewOf(acct), nil
}

// LoginExternal signs in the owner of an identity vouched for by the OIDC
// provider, creating an external account on first login. An email that
// already belongs to a local account yields ErrProviderNotValid.
func (s *Service) LoginExternal(ctx context.Context, id *auth.Identity) (string, error) {
	token, err := s.loginExternal(ctx, id)
	record("external_login", err)
	return token, err
}

// maxUsernameAttempts bounds retries when a derived username is taken.
const maxUsernameAttempts = 5

func (s *Service) loginExternal(ctx context.Context, id *auth.Identity) (string, error) {
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		acct, err := s.accounts.GetByEmail(ctx, id.Email)
		if err == nil {
			if acct.IsLocal() {
				return "", ErrProviderNotValid
			}
			return s.issue(acct.ID, s.now())
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("look up account: %w", err)
		}

		username := deriveUsername(id, attempt)
		taken, err := s.accounts.UsernameExists(ctx, username)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if taken {
			continue
		}

		now := s.now()
		acct, err = s.accounts.Create(ctx, username, id.Email, "", store.ProviderExternal, now)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create external account: %w", err)
		}
		s.log.Info("external account created",
			zap.String("account_id", acct.ID),
			zap.String("issuer", id.Issuer))
		return s.issue(acct.ID, now)
	}
	return "", fmt.Errorf("no free username for %s after %d attempts", id.Email, maxUsernameAttempts)
}

func (s *Service) issue(accountID string, now time.Time) (string, error) {
	token, err := auth.IssueToken(s.tokenSecret, accountID, now)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// deriveUsername builds a 6-20 character username from the identity's
// preferred username, or the local part of its email. Attempts after the
// first carry a random suffix.
func deriveUsername(id *auth.Identity, attempt int) string {
	base := sanitizeUsername(id.PreferredUsername)
	if base == "" {
		local, _, _ := strings.Cut(id.Email, "@")
		base = sanitizeUsername(local)
	}
	if base == "" {
		base = "user"
	}

	if attempt > 0 {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		if len(base) > usernameMax-len(suffix)-1 {
			base = base[:usernameMax-len(suffix)-1]
		}
		return base + "_" + suffix
	}

	if len(base) > usernameMax {
		base = base[:usernameMax]
	}
	for len(base) < usernameMin {
		base += "0"
	}
	return base
}

// sanitizeUsername lowercases s and keeps only ASCII letters, digits,
// underscores and dots.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyRegistered):
		result = "already_registered"
	case errors.Is(err, ErrUserNotFound):
		result = "user_not_found"
	case errors.Is(err, ErrProviderNotValid):
		result = "bad_provider"
	case errors.Is(err, ErrBadCredentials):
		result = "bad_credentials"
	default:
		var verr *validate.Error
		if errors.As(err, &verr) {
			result = "invalid"
		} else {
			result = "error"
		}
	}
	metrics.AccountOpsTotal.WithLabelValues(op, result).Inc()
}
