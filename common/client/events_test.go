package client

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsService_Routes(t *testing.T) {
	start := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 7, 2, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		call       func(s *EventsService) (*Envelope, error)
		wantMethod string
		wantPath   string
		wantQuery  url.Values
		wantBody   interface{}
	}{
		{
			name: "list events",
			call: func(s *EventsService) (*Envelope, error) {
				return s.ListEvents(context.Background(), EventFilter{AppID: "app-1", Page: 2, PerPage: 20, StartDate: start, EndDate: end})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/events",
			wantQuery: url.Values{
				"groupId":   {"proj-123"},
				"appId":     {"app-1"},
				"page":      {"2"},
				"perPage":   {"20"},
				"startDate": {"2022-07-01T00:00:00"},
				"endDate":   {"2022-07-02T12:30:00"},
			},
		},
		{
			name:       "get event",
			call:       func(s *EventsService) (*Envelope, error) { return s.GetEvent(context.Background(), "evt-1") },
			wantMethod: http.MethodGet,
			wantPath:   "/events/evt-1",
			wantQuery:  url.Values{"groupId": {"proj-123"}},
		},
		{
			name:       "replay event",
			call:       func(s *EventsService) (*Envelope, error) { return s.ReplayEvent(context.Background(), "evt-1") },
			wantMethod: http.MethodPut,
			wantPath:   "/events/evt-1/replay",
			wantQuery:  url.Values{"groupId": {"proj-123"}},
		},
		{
			name: "list deliveries",
			call: func(s *EventsService) (*Envelope, error) {
				return s.ListEventDeliveries(context.Background(), DeliveryFilter{EventID: "evt-1", Status: []string{"Failure", "Retry"}})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries",
			wantQuery: url.Values{
				"groupId": {"proj-123"},
				"eventId": {"evt-1"},
				"status":  {"Failure", "Retry"},
			},
		},
		{
			name:       "get delivery",
			call:       func(s *EventsService) (*Envelope, error) { return s.GetEventDelivery(context.Background(), "dlv-1") },
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries/dlv-1",
			wantQuery:  url.Values{"groupId": {"proj-123"}},
		},
		{
			name:       "resend delivery",
			call:       func(s *EventsService) (*Envelope, error) { return s.ResendEventDelivery(context.Background(), "dlv-1") },
			wantMethod: http.MethodPut,
			wantPath:   "/eventdeliveries/dlv-1/resend",
			wantQuery:  url.Values{"groupId": {"proj-123"}},
		},
		{
			name: "batch retry",
			call: func(s *EventsService) (*Envelope, error) {
				return s.BatchRetryEventDeliveries(context.Background(), DeliveryFilter{AppID: "app-1", Status: []string{"Failure"}})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/eventdeliveries/batchretry",
			wantQuery: url.Values{
				"groupId": {"proj-123"},
				"appId":   {"app-1"},
				"status":  {"Failure"},
			},
		},
		{
			name: "count batch retry",
			call: func(s *EventsService) (*Envelope, error) {
				return s.CountBatchRetryEventDeliveries(context.Background(), DeliveryFilter{AppID: "app-1", EventID: "evt-1", Status: []string{"Failure"}})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/eventdeliveries/countbatchretryevents",
			wantQuery: url.Values{
				"groupId": {"proj-123"},
				"appId":   {"app-1"},
				"eventId": {"evt-1"},
				"status":  {"Failure"},
			},
		},
		{
			name: "force resend",
			call: func(s *EventsService) (*Envelope, error) {
				return s.ForceResendEventDeliveries(context.Background(), []string{"dlv-1", "dlv-2"})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/eventdeliveries/forceresend",
			wantQuery:  url.Values{"groupId": {"proj-123"}},
			wantBody:   map[string][]string{"ids": {"dlv-1", "dlv-2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Success: true}
			transport := &recordingTransport{envelope: env}
			svc := NewEventsService(transport, StaticGroup("proj-123"))

			got, err := tt.call(svc)

			require.NoError(t, err)
			assert.Same(t, env, got)
			require.Len(t, transport.calls, 1)
			call := transport.calls[0]
			assert.Equal(t, tt.wantMethod, call.Method)
			assert.Equal(t, tt.wantPath, call.Path)
			assert.Equal(t, tt.wantQuery, call.Query)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, call.Body)
			} else {
				assert.Nil(t, call.Body)
			}
		})
	}
}

func TestEventsService_EscapesIDs(t *testing.T) {
	transport := &recordingTransport{envelope: &Envelope{}}
	svc := NewEventsService(transport, StaticGroup("proj-123"))

	_, err := svc.GetEvent(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/events/a%2Fb", transport.calls[0].Path)
}

func TestEventsService_PropagatesErrors(t *testing.T) {
	transportErr := &RequestError{Method: http.MethodGet, URL: "/events", StatusCode: 401}
	transport := &recordingTransport{err: transportErr}
	svc := NewEventsService(transport, StaticGroup("proj-123"))

	_, err := svc.ListEvents(context.Background(), EventFilter{})
	assert.Same(t, transportErr, err)

	transport = &recordingTransport{}
	svc = NewEventsService(transport, StaticGroup(""))
	_, err = svc.ReplayEvent(context.Background(), "evt-1")
	assert.ErrorIs(t, err, ErrNoGroup)
	assert.Empty(t, transport.calls)
}
