package handlers

import (
	"net/http"

	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
)

type SourcesHandler struct {
	sources *client.SourcesService
	logger  *logging.Logger
}

func NewSourcesHandler(sources *client.SourcesService, logger *logging.Logger) *SourcesHandler {
	return &SourcesHandler{sources: sources, logger: logger}
}

// Create passes the browser's source document to the backend as-is.
func (h *SourcesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var source client.Source
	if err := httputil.DecodeJSON(r, &source); err != nil {
		decodeError(w, err)
		return
	}
	if source == nil {
		httputil.WriteError(w, http.StatusBadRequest, "source must be a JSON object")
		return
	}

	env, err := h.sources.CreateSource(r.Context(), source)
	relay(w, r, h.logger, env, err)
}
