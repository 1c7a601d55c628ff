package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// dateLayout is the timestamp format the event API accepts in filters.
const dateLayout = "2006-01-02T15:04:05"

// EventFilter narrows event listings.
type EventFilter struct {
	AppID     string
	SourceID  string
	Page      int
	PerPage   int
	StartDate time.Time
	EndDate   time.Time
	Sort      string
}

func (f EventFilter) values(groupID string) url.Values {
	q := url.Values{"groupId": []string{groupID}}
	setIfNotEmpty(q, "appId", f.AppID)
	setIfNotEmpty(q, "sourceId", f.SourceID)
	setIfNotEmpty(q, "sort", f.Sort)
	setPaging(q, f.Page, f.PerPage)
	setDates(q, f.StartDate, f.EndDate)
	return q
}

// DeliveryFilter narrows event delivery listings and batch retries.
type DeliveryFilter struct {
	AppID     string
	EventID   string
	Status    []string
	Page      int
	PerPage   int
	StartDate time.Time
	EndDate   time.Time
}

func (f DeliveryFilter) values(groupID string) url.Values {
	q := url.Values{"groupId": []string{groupID}}
	setIfNotEmpty(q, "appId", f.AppID)
	setIfNotEmpty(q, "eventId", f.EventID)
	for _, s := range f.Status {
		if s != "" {
			q.Add("status", s)
		}
	}
	setPaging(q, f.Page, f.PerPage)
	setDates(q, f.StartDate, f.EndDate)
	return q
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPaging(q url.Values, page, perPage int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}
}

func setDates(q url.Values, start, end time.Time) {
	if !start.IsZero() {
		q.Set("startDate", start.UTC().Format(dateLayout))
	}
	if !end.IsZero() {
		q.Set("endDate", end.UTC().Format(dateLayout))
	}
}

// EventsService backs the events page: events, their deliveries, and the
// replay/resend actions. Like SourcesService it relays envelopes and errors
// untouched.
type EventsService struct {
	transport Requester
	groups    GroupResolver
}

func NewEventsService(transport Requester, groups GroupResolver) *EventsService {
	return &EventsService{transport: transport, groups: groups}
}

func (s *EventsService) call(ctx context.Context, method, path string, query func(groupID string) url.Values, body interface{}) (*Envelope, error) {
	return scopedRequest(ctx, s.transport, s.groups, method, path, query, body)
}

// scopedRequest reads the active project once and issues one request with it
// as groupId. query, when set, builds the full query string from the id.
func scopedRequest(ctx context.Context, transport Requester, groups GroupResolver, method, path string, query func(groupID string) url.Values, body interface{}) (*Envelope, error) {
	groupID, err := groups.ActiveGroupID(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{"groupId": []string{groupID}}
	if query != nil {
		q = query(groupID)
	}

	return transport.Request(ctx, RequestOptions{
		Method: method,
		Path:   path,
		Query:  q,
		Body:   body,
	})
}

func (s *EventsService) ListEvents(ctx context.Context, filter EventFilter) (*Envelope, error) {
	return s.call(ctx, http.MethodGet, "/events", filter.values, nil)
}

func (s *EventsService) GetEvent(ctx context.Context, eventID string) (*Envelope, error) {
	return s.call(ctx, http.MethodGet, "/events/"+url.PathEscape(eventID), nil, nil)
}

// ReplayEvent re-dispatches an event to its subscribers.
func (s *EventsService) ReplayEvent(ctx context.Context, eventID string) (*Envelope, error) {
	return s.call(ctx, http.MethodPut, "/events/"+url.PathEscape(eventID)+"/replay", nil, nil)
}

func (s *EventsService) ListEventDeliveries(ctx context.Context, filter DeliveryFilter) (*Envelope, error) {
	return s.call(ctx, http.MethodGet, "/eventdeliveries", filter.values, nil)
}

func (s *EventsService) GetEventDelivery(ctx context.Context, deliveryID string) (*Envelope, error) {
	return s.call(ctx, http.MethodGet, "/eventdeliveries/"+url.PathEscape(deliveryID), nil, nil)
}

func (s *EventsService) ResendEventDelivery(ctx context.Context, deliveryID string) (*Envelope, error) {
	return s.call(ctx, http.MethodPut, "/eventdeliveries/"+url.PathEscape(deliveryID)+"/resend", nil, nil)
}

// BatchRetryEventDeliveries retries every delivery matching filter.
func (s *EventsService) BatchRetryEventDeliveries(ctx context.Context, filter DeliveryFilter) (*Envelope, error) {
	return s.call(ctx, http.MethodPost, "/eventdeliveries/batchretry", filter.values, nil)
}

// CountBatchRetryEventDeliveries previews how many deliveries a batch retry
// with the same filter would touch. The count is in data.num.
func (s *EventsService) CountBatchRetryEventDeliveries(ctx context.Context, filter DeliveryFilter) (*Envelope, error) {
	return s.call(ctx, http.MethodGet, "/eventdeliveries/countbatchretryevents", filter.values, nil)
}

// ForceResendEventDeliveries resends the given deliveries regardless of status.
func (s *EventsService) ForceResendEventDeliveries(ctx context.Context, deliveryIDs []string) (*Envelope, error) {
	return s.call(ctx, http.MethodPost, "/eventdeliveries/forceresend", nil, map[string][]string{"ids": deliveryIDs})
}
