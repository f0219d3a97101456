package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/store"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "alice01", "a@x.com", "secret123")

	rr := env.do(t, http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decode[userData](t, rr)
	require.NotNil(t, me.Data)
	assert.Nil(t, me.Error)
	assert.Equal(t, "alice01", me.Data.User.Username)
	assert.Equal(t, "local", me.Data.User.AuthProvider)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = env.do(t, http.MethodPost, "/api/user/login", "", map[string]string{"username": "alice01", "password": "secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decode[tokenData](t, rr)

	claims, err := auth.ValidateToken(tokenSecret, login.Data.Token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, me.Data.User.ID, claims.Subject)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice01", "a@x.com", "secret123")

	rr := env.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"username": "bob", "email": "not-an-email", "password": "1234",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	bad := decode[struct{}](t, rr)
	assert.Nil(t, bad.Data)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "invalid data from client", bad.Error.Message)
	require.NotNil(t, bad.Error.Error)
	assert.Equal(t, map[string]string{
		"username": "invalid length",
		"email":    "invalid email",
		"password": "invalid length",
	}, bad.Error.Error.Fields)

	rr = env.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"username": "someone", "email": "a@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":{"message":"user already registered","error":null}}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/user/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid request body", decode[struct{}](t, rr).Error.Message)
}

func TestLogin_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice01", "a@x.com", "secret123")
	_, err := env.Accounts.Create(context.Background(), "extern1", "e@x.com", "", store.ProviderExternal, time.Now())
	require.NoError(t, err)

	cases := []struct {
		name     string
		username string
		password string
		status   int
		message  string
	}{
		{"unknown user", "nobody1", "secret123", http.StatusNotAcceptable, "user not found"},
		{"wrong password", "alice01", "secret999", http.StatusForbidden, "bad credentials"},
		{"external account", "extern1", "secret123", http.StatusBadRequest, "bad provider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/user/login", "", map[string]string{"username": tc.username, "password": tc.password})
			assert.Equal(t, tc.status, rr.Code)
			body := decode[struct{}](t, rr)
			assert.Nil(t, body.Data)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.message, body.Error.Message)
			assert.Nil(t, body.Error.Error)
		})
	}
}

func TestMe_AuthErrors(t *testing.T) {
	env := newTestEnv(t)

	expired, err := auth.IssueToken(tokenSecret, "3f1c1f0e-7a38-4a51-9d53-1c7b8d2f0a11", time.Now().Add(-5*time.Hour))
	require.NoError(t, err)
	unknown, err := auth.IssueToken(tokenSecret, "3f1c1f0e-7a38-4a51-9d53-1c7b8d2f0a11", time.Now())
	require.NoError(t, err)
	forged, err := auth.IssueToken(hashSecret, "3f1c1f0e-7a38-4a51-9d53-1c7b8d2f0a11", time.Now())
	require.NoError(t, err)

	cases := []struct {
		name    string
		token   string
		status  int
		message string
	}{
		{"no header", "", http.StatusBadRequest, "missing credentials"},
		{"expired", expired, http.StatusForbidden, "invalid token"},
		{"forged", forged, http.StatusForbidden, "invalid token"},
		{"unknown account", unknown, http.StatusUnauthorized, "wrong credentials"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/api/user/me", tc.token, nil)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.message, decode[struct{}](t, rr).Error.Message)
		})
	}
}
