package auth

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

// Session keys holding the in-flight OIDC login between redirect and callback.
const (
	sessionStateKey    = "oidc_state"
	sessionVerifierKey = "oidc_verifier"
)

// NewSessionManager creates an SCS session manager backed by the sessions
// table. The driver parameter selects the appropriate store: "mysql",
// "postgres", or "sqlite3" (default). Sessions only carry OIDC state; API
// requests authenticate with bearer tokens.
func NewSessionManager(db *sqlx.DB, driver string, lifetime time.Duration, insecureCookies bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "linkhub_oidc"
	sm.Cookie.Path = "/api/user/oidc"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = !insecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}
