package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/logging"
	"github.com/hookline/hookline/common/middleware"
	"github.com/hookline/hookline/common/session"
)

// Headers never forwarded to the backend. Credentials come from the session.
var droppedRequestHeaders = map[string]bool{
	"Authorization":     true,
	"Cookie":            true,
	"Connection":        true,
	"Keep-Alive":        true,
	"Proxy-Connection":  true,
	"Te":                true,
	"Trailer":           true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
}

var droppedResponseHeaders = map[string]bool{
	"Set-Cookie":        true,
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
}

// Proxy forwards dashboard calls the BFF has no typed handler for. Every
// request is scoped to the session's project and signed with its API key.
type Proxy struct {
	targetURL  string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewProxy(targetURL string, timeout time.Duration, logger *logging.Logger) *Proxy {
	return &Proxy{
		targetURL: strings.TrimRight(targetURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *Proxy) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if s == nil || s.GroupID == "" {
			httputil.WriteError(w, http.StatusConflict, "No active project selected")
			return
		}

		query := r.URL.Query()
		query.Set("groupId", s.GroupID)
		targetURL := p.targetURL + r.URL.EscapedPath() + "?" + query.Encode()

		proxyReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
		if err != nil {
			p.logger.ErrorContext(r.Context(), "proxy request creation failed", logging.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		proxyReq.ContentLength = r.ContentLength

		for key, values := range r.Header {
			if droppedRequestHeaders[key] {
				continue
			}
			for _, value := range values {
				proxyReq.Header.Add(key, value)
			}
		}
		if s.APIKey != "" {
			proxyReq.Header.Set("Authorization", "Bearer "+s.APIKey)
		}
		if id := middleware.GetRequestID(r.Context()); id != "" {
			proxyReq.Header.Set(middleware.RequestIDHeader, id)
		}

		resp, err := p.httpClient.Do(proxyReq)
		if err != nil {
			p.logger.ErrorContext(r.Context(), "proxy request failed",
				logging.Method(r.Method), logging.Path(r.URL.Path), logging.Error(err))
			httputil.WriteError(w, http.StatusBadGateway, "Backend unavailable")
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			if droppedResponseHeaders[key] {
				continue
			}
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			p.logger.WarnContext(r.Context(), "proxy response copy failed", logging.Error(err))
		}
	})
}
