package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/session"
	"github.com/hookline/hookline/web/backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiringStore accepts new sessions but treats any rewrite as a write to a
// session that expired in the meantime.
type expiringStore struct {
	*session.MemoryStore
}

func (s expiringStore) Save(ctx context.Context, sess *session.Session) error {
	if _, err := s.MemoryStore.Get(ctx, sess.ID); err == nil {
		return session.ErrNotFound
	}
	return s.MemoryStore.Save(ctx, sess)
}

func switchProject(t *testing.T, store session.Store, body string) *httptest.ResponseRecorder {
	t.Helper()
	manager := session.NewManager(store, session.NewTokenIssuer("test-secret"), time.Hour)
	s, _, err := manager.Start(context.Background(), "key-1", "proj-123")
	require.NoError(t, err)

	h := NewAuthHandler(manager, auth.Cookies{}, logging.Discard())
	req := httptest.NewRequest(http.MethodPut, "/api/session/project", strings.NewReader(body))
	req = req.WithContext(session.WithSession(req.Context(), s))
	rr := httptest.NewRecorder()
	h.SwitchProject(rr, req)
	return rr
}

func TestAuthHandler_SwitchProject(t *testing.T) {
	tests := []struct {
		name       string
		store      session.Store
		body       string
		wantStatus int
		wantBody   string
	}{
		{"switched", session.NewMemoryStore(), `{"group_id":"proj-456"}`, http.StatusOK, `"group_id":"proj-456"`},
		{"missing group", session.NewMemoryStore(), `{"group_id":""}`, http.StatusBadRequest, "group_id is required"},
		{"bad body", session.NewMemoryStore(), `{`, http.StatusBadRequest, `"success":false`},
		{"session expired before save", expiringStore{session.NewMemoryStore()}, `{"group_id":"proj-456"}`, http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := switchProject(t, tt.store, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestAuthHandler_SwitchProjectWithoutSession(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), session.NewTokenIssuer("test-secret"), time.Hour)
	h := NewAuthHandler(manager, auth.Cookies{}, logging.Discard())

	rr := httptest.NewRecorder()
	h.SwitchProject(rr, httptest.NewRequest(http.MethodPut, "/api/session/project", strings.NewReader(`{"group_id":"p"}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
