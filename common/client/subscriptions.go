package client

import (
	"context"
	"net/http"
	"net/url"
)

// Subscription is a subscription document as the event API expects it. Like
// Source it is passed through without validation.
type Subscription map[string]interface{}

// SubscriptionFilter narrows subscription listings. Query matches on name.
type SubscriptionFilter struct {
	Query   string
	Sort    string
	Page    int
	PerPage int
}

func (f SubscriptionFilter) values(groupID string) url.Values {
	q := url.Values{"groupId": []string{groupID}}
	setIfNotEmpty(q, "q", f.Query)
	setIfNotEmpty(q, "sort", f.Sort)
	setPaging(q, f.Page, f.PerPage)
	return q
}

// SubscriptionsService manages the active project's subscriptions.
type SubscriptionsService struct {
	transport Requester
	groups    GroupResolver
}

func NewSubscriptionsService(transport Requester, groups GroupResolver) *SubscriptionsService {
	return &SubscriptionsService{transport: transport, groups: groups}
}

func subscriptionPath(id string) string {
	return "/subscriptions/" + url.PathEscape(id)
}

func (s *SubscriptionsService) ListSubscriptions(ctx context.Context, filter SubscriptionFilter) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodGet, "/subscriptions", filter.values, nil)
}

func (s *SubscriptionsService) GetSubscription(ctx context.Context, id string) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodGet, subscriptionPath(id), nil, nil)
}

func (s *SubscriptionsService) CreateSubscription(ctx context.Context, sub Subscription) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodPost, "/subscriptions", nil, sub)
}

func (s *SubscriptionsService) UpdateSubscription(ctx context.Context, id string, sub Subscription) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodPut, subscriptionPath(id), nil, sub)
}

func (s *SubscriptionsService) DeleteSubscription(ctx context.Context, id string) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodDelete, subscriptionPath(id), nil, nil)
}

// ToggleSubscriptionStatus flips a subscription between active and inactive.
func (s *SubscriptionsService) ToggleSubscriptionStatus(ctx context.Context, id string) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, http.MethodPut, subscriptionPath(id)+"/toggle_status", nil, nil)
}
