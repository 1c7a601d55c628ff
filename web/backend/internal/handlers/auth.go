package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/session"
	"github.com/hookline/hookline/web/backend/internal/auth"
)

type AuthHandler struct {
	sessions *session.Manager
	cookies  auth.Cookies
	logger   *logging.Logger
}

func NewAuthHandler(sessions *session.Manager, cookies auth.Cookies, logger *logging.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
	}
}

type LoginRequest struct {
	APIKey  string `json:"api_key"`
	GroupID string `json:"group_id"`
}

type SwitchProjectRequest struct {
	GroupID string `json:"group_id"`
}

// SessionInfo is what the browser may know about its session.
type SessionInfo struct {
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionInfo(s *session.Session) SessionInfo {
	return SessionInfo{GroupID: s.GroupID, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		decodeError(w, err)
		return
	}

	s, token, err := h.sessions.Start(r.Context(), req.APIKey, req.GroupID)
	if errors.Is(err, session.ErrInvalidSession) {
		httputil.WriteError(w, http.StatusBadRequest, "api_key and group_id are required")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start session", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.cookies.Set(w, token, s.ExpiresAt)
	h.logger.InfoContext(r.Context(), "session started",
		logging.SessionID(s.ID), logging.GroupID(s.GroupID), "client_ip", httputil.GetClientIP(r))

	httputil.WriteEnvelope(w, http.StatusOK, "Login successful", sessionInfo(s))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil && cookie.Value != "" {
		if s, err := h.sessions.Resume(r.Context(), cookie.Value); err == nil {
			if err := h.sessions.End(r.Context(), s.ID); err != nil {
				h.logger.ErrorContext(r.Context(), "failed to end session", logging.SessionID(s.ID), logging.Error(err))
			}
		}
	}

	h.cookies.Clear(w)
	httputil.WriteEnvelope(w, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httputil.WriteEnvelope(w, http.StatusOK, "Session fetched", sessionInfo(s))
}

// SwitchProject changes the session's active project. Requests already in
// flight keep the project they started with.
func (h *AuthHandler) SwitchProject(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SwitchProjectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		decodeError(w, err)
		return
	}

	next, err := h.sessions.SwitchGroup(r.Context(), s.ID, req.GroupID)
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		httputil.WriteError(w, http.StatusBadRequest, "group_id is required")
		return
	case errors.Is(err, session.ErrNotFound):
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "failed to switch project", logging.SessionID(s.ID), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to switch project")
		return
	}

	h.logger.InfoContext(r.Context(), "project switched",
		logging.SessionID(s.ID), logging.GroupID(next.GroupID), "previous_group_id", s.GroupID)
	httputil.WriteEnvelope(w, http.StatusOK, "Project switched", sessionInfo(next))
}
