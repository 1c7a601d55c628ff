package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 12 * time.Hour

// Manager ties a Store to signed session tokens.
type Manager struct {
	store  Store
	tokens *TokenIssuer
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, tokens *TokenIssuer, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		tokens: tokens,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is how long new sessions live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start opens a session scoped to groupID and returns it with its signed token.
func (m *Manager) Start(ctx context.Context, apiKey, groupID string) (*Session, string, error) {
	if apiKey == "" || groupID == "" {
		return nil, "", fmt.Errorf("%w: api key and project are required", ErrInvalidSession)
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		APIKey:    apiKey,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, s); err != nil {
		return nil, "", err
	}

	token, err := m.tokens.Issue(s.ID, now, s.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return s, token, nil
}

// Resume validates token and loads its session.
func (m *Manager) Resume(ctx context.Context, token string) (*Session, error) {
	id, err := m.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return m.store.Get(ctx, id)
}

// SwitchGroup makes groupID the session's active project. The stored session
// is replaced; callers holding the old value keep their old project.
func (m *Manager) SwitchGroup(ctx context.Context, id, groupID string) (*Session, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: project is required", ErrInvalidSession)
	}

	current, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	next.GroupID = groupID
	if err := m.store.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// End deletes the session.
func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
