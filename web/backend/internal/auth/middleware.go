package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/session"
)

// SessionCookie carries the signed session token.
const SessionCookie = "session_token"

// Cookies writes the session cookie with the dashboard's domain and
// transport settings.
type Cookies struct {
	Domain string
	Secure bool
}

func (c Cookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

type Middleware struct {
	sessions *session.Manager
	cookies  Cookies
	logger   *logging.Logger
}

func NewMiddleware(sessions *session.Manager, cookies Cookies, logger *logging.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
	}
}

// Protect resolves the session cookie and attaches the session to the
// request context. Requests without a live session get 401.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s, err := m.sessions.Resume(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrNotFound) {
				m.logger.ErrorContext(r.Context(), "session lookup failed", logging.Error(err))
			}
			m.cookies.Clear(w)
			httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := session.WithSession(r.Context(), s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
