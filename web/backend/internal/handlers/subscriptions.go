package handlers

import (
	"net/http"

	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
)

type SubscriptionsHandler struct {
	subscriptions *client.SubscriptionsService
	logger        *logging.Logger
}

func NewSubscriptionsHandler(subscriptions *client.SubscriptionsService, logger *logging.Logger) *SubscriptionsHandler {
	return &SubscriptionsHandler{subscriptions: subscriptions, logger: logger}
}

func (h *SubscriptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := httputil.ParsePagination(r, defaultPerPage, maxPerPage)
	env, err := h.subscriptions.ListSubscriptions(r.Context(), client.SubscriptionFilter{
		Query:   r.URL.Query().Get("q"),
		Sort:    r.URL.Query().Get("sort"),
		Page:    p.Page,
		PerPage: p.PerPage,
	})
	relay(w, r, h.logger, env, err)
}

func (h *SubscriptionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	env, err := h.subscriptions.GetSubscription(r.Context(), r.PathValue("id"))
	relay(w, r, h.logger, env, err)
}

func (h *SubscriptionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubscription(w, r)
	if !ok {
		return
	}
	env, err := h.subscriptions.CreateSubscription(r.Context(), sub)
	relay(w, r, h.logger, env, err)
}

func (h *SubscriptionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubscription(w, r)
	if !ok {
		return
	}
	env, err := h.subscriptions.UpdateSubscription(r.Context(), r.PathValue("id"), sub)
	relay(w, r, h.logger, env, err)
}

func (h *SubscriptionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	env, err := h.subscriptions.DeleteSubscription(r.Context(), id)
	if err == nil {
		h.logger.InfoContext(r.Context(), "subscription deleted", logging.SubscriptionID(id))
	}
	relay(w, r, h.logger, env, err)
}

func (h *SubscriptionsHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	env, err := h.subscriptions.ToggleSubscriptionStatus(r.Context(), r.PathValue("id"))
	relay(w, r, h.logger, env, err)
}

func decodeSubscription(w http.ResponseWriter, r *http.Request) (client.Subscription, bool) {
	var sub client.Subscription
	if err := httputil.DecodeJSON(r, &sub); err != nil {
		decodeError(w, err)
		return nil, false
	}
	if sub == nil {
		httputil.WriteError(w, http.StatusBadRequest, "subscription must be a JSON object")
		return nil, false
	}
	return sub, true
}
