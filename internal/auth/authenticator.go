// Package auth hashes credentials, issues and validates bearer tokens, and
// resolves the calling account of an API request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/metrics"
	"github.com/joestump/linkhub/internal/respond"
	"github.com/joestump/linkhub/internal/store"
)

var (
	// ErrMissingCredentials means the Authorization header is absent or is
	// not of the form "Bearer <token>".
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidToken means the token failed validation or its subject is
	// not an account id.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongCredentials means the token is valid but names no account.
	ErrWrongCredentials = errors.New("wrong credentials")
)

type contextKey string

const accountIDKey contextKey = "account_id"

// AccountFinder resolves an account id. *store.AccountStore satisfies it.
type AccountFinder interface {
	GetByID(ctx context.Context, id string) (*store.Account, error)
}

// AccountCache remembers account ids known to exist. Accounts are never
// deleted, so a positive entry never goes stale.
type AccountCache interface {
	Known(ctx context.Context, id string) (bool, error)
	Remember(ctx context.Context, id string) error
}

// Authenticator resolves the caller of a request from its bearer token.
type Authenticator struct {
	accounts AccountFinder
	cache    AccountCache
	secret   []byte
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthenticator returns an Authenticator validating tokens signed with
// secret. cache may be nil.
func NewAuthenticator(accounts AccountFinder, cache AccountCache, secret []byte, log *zap.Logger) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		cache:    cache,
		secret:   secret,
		log:      log,
		now:      time.Now,
	}
}

// Authenticate returns the id of the account named by the request's bearer
// token. Errors are ErrMissingCredentials, ErrInvalidToken,
// ErrWrongCredentials, or a wrapped store failure.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", ErrMissingCredentials
	}

	claims, err := ValidateToken(a.secret, raw, a.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject is not an account id", ErrInvalidToken)
	}
	accountID := id.String()

	ctx := r.Context()
	if a.cache != nil {
		known, err := a.cache.Known(ctx, accountID)
		if err != nil {
			a.log.Warn("account cache lookup failed", zap.Error(err))
		} else if known {
			return accountID, nil
		}
	}

	if _, err := a.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrWrongCredentials
		}
		return "", fmt.Errorf("look up account: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Remember(ctx, accountID); err != nil {
			a.log.Warn("account cache store failed", zap.Error(err))
		}
	}
	return accountID, nil
}

// RequireAccount is middleware that authenticates the request before calling
// next, placing the caller's account id in the request context. Failures are
// answered directly and next is not called.
func (a *Authenticator) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := a.Authenticate(r)
		if err != nil {
			a.writeAuthError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountIDFromContext returns the id set by RequireAccount, or "".
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// WithAccountID returns ctx carrying accountID as the authenticated caller.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func (a *Authenticator) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		msg    string
		reason string
	)
	switch {
	case errors.Is(err, ErrMissingCredentials):
		status, msg, reason = http.StatusBadRequest, "missing credentials", "missing_credentials"
	case errors.Is(err, ErrInvalidToken):
		status, msg, reason = http.StatusForbidden, "invalid token", "invalid_token"
	case errors.Is(err, ErrWrongCredentials):
		status, msg, reason = http.StatusUnauthorized, "wrong credentials", "wrong_credentials"
	default:
		a.log.Error("authenticate request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		status, msg, reason = http.StatusInternalServerError, "internal error", "internal"
	}
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	respond.SimpleError(msg, status).Write(w)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
