package guard

import (
	"net/http"

	"github.com/edulane/edulane-go/pkg/logging"
	"github.com/edulane/edulane-go/pkg/session"
)

// ReadinessSource reports whether session rehydration has completed.
// *session.Rehydrator satisfies it.
type ReadinessSource interface {
	Ready() bool
}

// Middleware applies guard decisions to HTTP-rendered views: it wraps
// a protected view's handler and turns the decision into a response
// (placeholder page, redirect, or the protected content).
type Middleware struct {
	store            *session.Store
	readiness        ReadinessSource
	loginPath        string
	unauthorizedPath string
	logger           logging.Logger
}

// MiddlewareConfig configures redirect targets.
type MiddlewareConfig struct {
	// LoginPath is where unauthenticated users are sent. Default: "/login".
	LoginPath string

	// UnauthorizedPath is where authenticated users lacking a required
	// role are sent. Default: "/unauthorized".
	UnauthorizedPath string
}

// NewMiddleware creates a guard middleware over the given store and
// readiness source.
func NewMiddleware(store *session.Store, readiness ReadinessSource, cfg MiddlewareConfig, logger logging.Logger) *Middleware {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.UnauthorizedPath == "" {
		cfg.UnauthorizedPath = "/unauthorized"
	}
	if logger == nil {
		logger = logging.NewSimpleLogger("guard", logging.LevelInfo, false)
	}
	return &Middleware{
		store:            store,
		readiness:        readiness,
		loginPath:        cfg.LoginPath,
		unauthorizedPath: cfg.UnauthorizedPath,
		logger:           logger,
	}
}

// Protect wraps next with a role requirement. An empty role set
// requires authentication only.
func (m *Middleware) Protect(roles []Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := Evaluate(m.store.Snapshot(), m.readiness.Ready(), roles)
		m.logger.Debug("guard decision", "path", r.URL.Path, "decision", decision)

		switch decision {
		case DecisionPending:
			m.renderPlaceholder(w)
		case DecisionRedirectLogin:
			http.Redirect(w, r, m.loginPath, http.StatusSeeOther)
		case DecisionRedirectUnauthorized:
			http.Redirect(w, r, m.unauthorizedPath, http.StatusSeeOther)
		case DecisionAllow:
			next.ServeHTTP(w, r)
		}
	})
}

// renderPlaceholder serves a minimal loading page that retries,
// covering the window before rehydration completes.
func (m *Middleware) renderPlaceholder(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading…</p></body>
</html>
`))
}
