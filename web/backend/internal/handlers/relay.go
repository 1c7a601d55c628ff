package handlers

import (
	"errors"
	"net/http"

	"github.com/hookline/hookline/common/client"
	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/session"
)

// relay forwards a gateway result to the browser. Success envelopes and
// backend error responses are written back byte for byte with their status.
// Failures that never produced a backend response become 502.
func relay(w http.ResponseWriter, r *http.Request, logger *logging.Logger, env *client.Envelope, err error) {
	if err == nil {
		status := env.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		if len(env.Raw) == 0 {
			httputil.WriteJSON(w, status, env)
			return
		}
		httputil.WriteRaw(w, status, env.Raw)
		return
	}

	if errors.Is(err, session.ErrNoActiveGroup) || errors.Is(err, client.ErrNoGroup) {
		httputil.WriteError(w, http.StatusConflict, "No active project selected")
		return
	}

	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 && !errors.Is(err, client.ErrMalformedResponse) {
		if len(reqErr.Body) > 0 {
			httputil.WriteRaw(w, reqErr.StatusCode, reqErr.Body)
		} else {
			httputil.WriteError(w, reqErr.StatusCode, http.StatusText(reqErr.StatusCode))
		}
		return
	}

	logger.ErrorContext(r.Context(), "backend request failed", logging.Path(r.URL.Path), logging.Error(err))
	httputil.WriteError(w, http.StatusBadGateway, "Backend unavailable")
}

// decodeError writes a 400 for a request body that could not be decoded.
func decodeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, http.StatusBadRequest, err.Error())
}
