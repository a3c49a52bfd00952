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

// SessionUsernameKey holds the authenticated principal's username.
const SessionUsernameKey = "username"

// NewSQLSessionStore returns the scs store for the application database.
// The driver parameter selects "mysql", "postgres", or "sqlite3" (default).
func NewSQLSessionStore(db *sqlx.DB, driver string) scs.Store {
	switch driver {
	case "mysql":
		return mysqlstore.New(db.DB)
	case "postgres":
		return postgresstore.New(db.DB)
	default: // sqlite3
		return sqlite3store.New(db.DB)
	}
}

// NewSessionManager creates an SCS session manager on the given store.
func NewSessionManager(st scs.Store, lifetime time.Duration, secureCookies bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = st
	sm.Lifetime = lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}
