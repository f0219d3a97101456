package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/accounts"
	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/respond"
	"github.com/joestump/linkhub/internal/validate"
)

type accountsHandler struct {
	accounts *accounts.Service
	log      *zap.Logger
}

// Register creates a local account and returns a token.
// POST /api/user/register
//
// @Summary      Register
// @Description  Creates a local account. The returned token is immediately usable; no separate login is needed.
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        body  body      accounts.RegisterInput  true  "New account"
// @Success      200   {object}  TokenEnvelope
// @Failure      400   {object}  ErrorEnvelope  "invalid data from client"
// @Failure      403   {object}  ErrorEnvelope  "user already registered"
// @Failure      500   {object}  ErrorEnvelope
// @Router       /api/user/register [post]
func (h *accountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	token, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	respond.Success(TokenResponse{Token: token}, http.StatusOK).Write(w)
}

// Login checks a username and password and returns a token.
// POST /api/user/login
//
// @Summary      Log in
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        body  body      accounts.LoginInput  true  "Credentials"
// @Success      200   {object}  TokenEnvelope
// @Failure      400   {object}  ErrorEnvelope  "bad provider"
// @Failure      403   {object}  ErrorEnvelope  "bad credentials"
// @Failure      406   {object}  ErrorEnvelope  "user not found"
// @Failure      500   {object}  ErrorEnvelope
// @Router       /api/user/login [post]
func (h *accountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	token, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	respond.Success(TokenResponse{Token: token}, http.StatusOK).Write(w)
}

// Me returns the authenticated caller's account.
// GET /api/user/me
//
// @Summary      Current account
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  UserEnvelope
// @Failure      400  {object}  ErrorEnvelope  "missing credentials"
// @Failure      401  {object}  ErrorEnvelope  "wrong credentials"
// @Failure      403  {object}  ErrorEnvelope  "invalid token"
// @Failure      500  {object}  ErrorEnvelope
// @Security     BearerToken
// @Router       /api/user/me [get]
func (h *accountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.accounts.Me(r.Context(), auth.AccountIDFromContext(r.Context()))
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	respond.Success(UserResponse{User: view}, http.StatusOK).Write(w)
}

// ExternalLogin finishes an OIDC login by signing in (or creating) the
// external account for the verified identity.
//
// @Summary      OIDC callback
// @Description  Completes the login started at /api/user/oidc/login and returns a token for the external account.
// @Tags         Accounts
// @Produce      json
// @Param        state  query     string  true  "State from the authorization request"
// @Param        code   query     string  true  "Authorization code"
// @Success      200    {object}  TokenEnvelope
// @Failure      400    {object}  ErrorEnvelope
// @Failure      401    {object}  ErrorEnvelope
// @Router       /api/user/oidc/callback [get]
func (h *accountsHandler) ExternalLogin(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	token, err := h.accounts.LoginExternal(r.Context(), id)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	respond.Success(TokenResponse{Token: token}, http.StatusOK).Write(w)
}

func (h *accountsHandler) writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, accounts.ErrAlreadyRegistered):
		respond.SimpleError("user already registered", http.StatusForbidden).Write(w)
	case errors.Is(err, accounts.ErrUserNotFound):
		respond.SimpleError("user not found", http.StatusNotAcceptable).Write(w)
	case errors.Is(err, accounts.ErrProviderNotValid):
		respond.SimpleError("bad provider", http.StatusBadRequest).Write(w)
	case errors.Is(err, accounts.ErrBadCredentials):
		respond.SimpleError("bad credentials", http.StatusForbidden).Write(w)
	default:
		writeInternal(w, r, h.log, err)
	}
}
