package auth

import (
	"crypto/rand"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/joestump/linkhub/internal/respond"
)

// IdentityHandler completes a login once the provider has vouched for the
// user. It owns the response.
type IdentityHandler func(w http.ResponseWriter, r *http.Request, id *Identity)

// OIDCHandlers serves the authorization code flow with PKCE. State and
// verifier live in the server-side session between the two requests.
type OIDCHandlers struct {
	provider IdentityProvider
	sessions *scs.SessionManager
	done     IdentityHandler
	log      *zap.Logger
}

// NewOIDCHandlers returns handlers that hand each verified identity to done.
func NewOIDCHandlers(p IdentityProvider, sm *scs.SessionManager, done IdentityHandler, log *zap.Logger) *OIDCHandlers {
	return &OIDCHandlers{provider: p, sessions: sm, done: done, log: log}
}

// Login starts the flow and redirects to the provider.
func (h *OIDCHandlers) Login(w http.ResponseWriter, r *http.Request) {
	state := rand.Text()
	verifier := oauth2.GenerateVerifier()

	h.sessions.Put(r.Context(), sessionStateKey, state)
	h.sessions.Put(r.Context(), sessionVerifierKey, verifier)

	http.Redirect(w, r, h.provider.AuthCodeURL(state, verifier), http.StatusFound)
}

// Callback handles the provider redirect. The state and verifier are
// single-use and removed from the session before the code is exchanged.
func (h *OIDCHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.PopString(r.Context(), sessionStateKey)
	verifier := h.sessions.PopString(r.Context(), sessionVerifierKey)

	if state == "" || state != r.URL.Query().Get("state") {
		respond.SimpleError("invalid state", http.StatusBadRequest).Write(w)
		return
	}
	if verifier == "" {
		respond.SimpleError("missing code verifier", http.StatusBadRequest).Write(w)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		respond.SimpleError("missing authorization code", http.StatusBadRequest).Write(w)
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code, verifier)
	if err != nil {
		h.log.Warn("oidc exchange failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		respond.SimpleError("authentication failed", http.StatusUnauthorized).Write(w)
		return
	}
	if identity.Email == "" {
		respond.SimpleError("provider did not supply an email", http.StatusUnauthorized).Write(w)
		return
	}

	h.done(w, r, identity)
}
