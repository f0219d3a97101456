package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/accounts"
	"github.com/joestump/linkhub/internal/api"
	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/links"
	"github.com/joestump/linkhub/internal/store"
	"github.com/joestump/linkhub/internal/testutil"
)

var (
	hashSecret  = []byte("hash-secret")
	tokenSecret = []byte("token-secret")
)

// testEnv holds the router and stores for API integration tests.
type testEnv struct {
	Router   http.Handler
	Accounts *store.AccountStore
	Links    *store.LinkStore
}

type envOption func(*api.Deps)

// withOIDC mounts the OIDC routes using p and an in-memory session store.
func withOIDC(p auth.IdentityProvider) envOption {
	return func(d *api.Deps) {
		d.IdentityProvider = p
		d.Sessions = scs.New()
	}
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full router with real stores and services.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zap.NewNop()

	as := store.NewAccountStore(db)
	ls := store.NewLinkStore(db)

	deps := api.Deps{
		Authenticator: auth.NewAuthenticator(as, nil, tokenSecret, log),
		Accounts:      accounts.NewService(as, hashSecret, tokenSecret, log),
		Links:         links.NewService(ls, log),
		Log:           log,
		Ping:          db.PingContext,
		CORSOrigins:   []string{"*"},
	}
	for _, o := range opts {
		o(&deps)
	}

	return &testEnv{Router: api.NewRouter(deps), Accounts: as, Links: ls}
}

// envelope mirrors the response wire shape for decoding in tests.
type envelope[T any] struct {
	Data  *T `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Error   *struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	} `json:"error"`
}

type tokenData struct {
	Token string `json:"token"`
}

type userData struct {
	User struct {
		ID           string `json:"id"`
		Username     string `json:"username"`
		Email        string `json:"email"`
		AuthProvider string `json:"auth_provider"`
	} `json:"user"`
}

type linkBody struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	RedirectTo string  `json:"redirect_to"`
	OwnerID    string  `json:"owner_id"`
	UpdatedAt  *string `json:"updated_at"`
}

type linkData struct {
	Link linkBody `json:"link"`
}

type linkListData struct {
	Links []linkBody `json:"links"`
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return env
}

// register creates a local account through the API and returns its token.
func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode[tokenData](t, rr)
	require.NotNil(t, env.Data)
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

// createLink creates a link through the API and returns it.
func (e *testEnv) createLink(t *testing.T, token, name, slug, redirect string) linkBody {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/links", token, map[string]string{
		"name": name, "slug": slug, "redirect_to": redirect,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env := decode[linkData](t, rr)
	require.NotNil(t, env.Data)
	return env.Data.Link
}

func (e *testEnv) accountID(t *testing.T, username string) string {
	t.Helper()
	a, err := e.Accounts.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return a.ID
}
