// Package session holds the dashboard's per-user tenant context: which API
// key the user signed in with and which project (group) is active. A session
// is created at login, may have its project switched explicitly, and is
// deleted at logout or when it expires. API calls only ever read it.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrInvalidSession = errors.New("invalid session")
	ErrNoActiveGroup  = errors.New("no active project in session")
)

// Session is one signed-in dashboard user.
type Session struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type contextKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return nil
}

// ContextResolver reads the active project from the session in the request
// context. It satisfies client.GroupResolver.
type ContextResolver struct{}

func (ContextResolver) ActiveGroupID(ctx context.Context) (string, error) {
	s := FromContext(ctx)
	if s == nil || s.GroupID == "" {
		return "", ErrNoActiveGroup
	}
	return s.GroupID, nil
}

// APIKeyFromContext returns the session's API key, or "" without a session.
// It matches client.TokenSource.
func APIKeyFromContext(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.APIKey
	}
	return ""
}
