package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	verifier string
	identity *Identity
	err      error
}

func (p *fakeProvider) AuthCodeURL(state, verifier string) string {
	p.verifier = verifier
	q := url.Values{"state": {state}, "code_challenge": {oauth2.S256ChallengeFromVerifier(verifier)}}
	return "https://idp.example.com/authorize?" + q.Encode()
}

func (p *fakeProvider) Exchange(_ context.Context, code, codeVerifier string) (*Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	if code != "good-code" || codeVerifier != p.verifier {
		return nil, errors.New("invalid grant")
	}
	return p.identity, nil
}

type oidcEnv struct {
	handler http.Handler
	got     *Identity
}

func newOIDCEnv(p IdentityProvider) *oidcEnv {
	env := &oidcEnv{}
	sm := scs.New()
	sm.Lifetime = 10 * time.Minute
	h := NewOIDCHandlers(p, sm, func(w http.ResponseWriter, r *http.Request, id *Identity) {
		env.got = id
		w.WriteHeader(http.StatusOK)
	}, zap.NewNop())

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	env.handler = r
	return env
}

func (e *oidcEnv) do(t *testing.T, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// begin runs the login step and returns the state and session cookies.
func (e *oidcEnv) begin(t *testing.T) (string, []*http.Cookie) {
	t.Helper()
	rr := e.do(t, "/login", nil)
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	require.NotEmpty(t, loc.Query().Get("code_challenge"))
	return state, rr.Result().Cookies()
}

func TestOIDC_FullFlow(t *testing.T) {
	p := &fakeProvider{identity: &Identity{Subject: "sub-1", Email: "ext@x.io"}}
	env := newOIDCEnv(p)

	state, cookies := env.begin(t)
	rr := env.do(t, "/callback?code=good-code&state="+url.QueryEscape(state), cookies)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.got)
	assert.Equal(t, "ext@x.io", env.got.Email)

	// State is single-use.
	env.got = nil
	rr = env.do(t, "/callback?code=good-code&state="+url.QueryEscape(state), cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, env.got)
}

func TestOIDC_StateMismatch(t *testing.T) {
	env := newOIDCEnv(&fakeProvider{identity: &Identity{Email: "ext@x.io"}})
	_, cookies := env.begin(t)

	rr := env.do(t, "/callback?code=good-code&state=forged", cookies)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":{"message":"invalid state","error":null}}`, rr.Body.String())
}

func TestOIDC_NoSession(t *testing.T) {
	env := newOIDCEnv(&fakeProvider{})
	rr := env.do(t, "/callback?code=good-code&state=anything", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOIDC_ExchangeFailure(t *testing.T) {
	env := newOIDCEnv(&fakeProvider{err: errors.New("idp unavailable")})
	state, cookies := env.begin(t)

	rr := env.do(t, "/callback?code=good-code&state="+url.QueryEscape(state), cookies)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, env.got)
}

func TestOIDC_MissingEmail(t *testing.T) {
	env := newOIDCEnv(&fakeProvider{identity: &Identity{Subject: "sub-1"}})
	state, cookies := env.begin(t)

	rr := env.do(t, "/callback?code=good-code&state="+url.QueryEscape(state), cookies)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, env.got)
}
