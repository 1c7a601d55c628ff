package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type EventsHandler struct {
	events *client.EventsService
	logger *logging.Logger
}

func NewEventsHandler(events *client.EventsService, logger *logging.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger}
}

func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := parseDateRange(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := httputil.ParsePagination(r, defaultPerPage, maxPerPage)

	env, err := h.events.ListEvents(r.Context(), client.EventFilter{
		AppID:     q.Get("appId"),
		SourceID:  q.Get("sourceId"),
		Sort:      q.Get("sort"),
		Page:      p.Page,
		PerPage:   p.PerPage,
		StartDate: start,
		EndDate:   end,
	})
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	env, err := h.events.GetEvent(r.Context(), r.PathValue("id"))
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) ReplayEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	env, err := h.events.ReplayEvent(r.Context(), id)
	if err == nil {
		h.logger.InfoContext(r.Context(), "event replayed", logging.EventID(id))
	}
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	filter, err := deliveryFilter(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.events.ListEventDeliveries(r.Context(), filter)
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	env, err := h.events.GetEventDelivery(r.Context(), r.PathValue("id"))
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) ResendDelivery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	env, err := h.events.ResendEventDelivery(r.Context(), id)
	if err == nil {
		h.logger.InfoContext(r.Context(), "delivery resent", logging.DeliveryID(id))
	}
	relay(w, r, h.logger, env, err)
}

func (h *EventsHandler) BatchRetry(w http.ResponseWriter, r *http.Request) {
	filter, err := deliveryFilter(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.events.BatchRetryEventDeliveries(r.Context(), filter)
	relay(w, r, h.logger, env, err)
}

// CountBatchRetry previews the number of deliveries BatchRetry would retry.
func (h *EventsHandler) CountBatchRetry(w http.ResponseWriter, r *http.Request) {
	filter, err := deliveryFilter(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	env, err := h.events.CountBatchRetryEventDeliveries(r.Context(), filter)
	relay(w, r, h.logger, env, err)
}

type forceResendRequest struct {
	IDs []string `json:"ids"`
}

func (h *EventsHandler) ForceResend(w http.ResponseWriter, r *http.Request) {
	var req forceResendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		decodeError(w, err)
		return
	}
	if len(req.IDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	env, err := h.events.ForceResendEventDeliveries(r.Context(), req.IDs)
	relay(w, r, h.logger, env, err)
}

func deliveryFilter(r *http.Request) (client.DeliveryFilter, error) {
	q := r.URL.Query()
	start, end, err := parseDateRange(r)
	if err != nil {
		return client.DeliveryFilter{}, err
	}
	p := httputil.ParsePagination(r, defaultPerPage, maxPerPage)

	return client.DeliveryFilter{
		AppID:     q.Get("appId"),
		EventID:   q.Get("eventId"),
		Status:    q["status"],
		Page:      p.Page,
		PerPage:   p.PerPage,
		StartDate: start,
		EndDate:   end,
	}, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
