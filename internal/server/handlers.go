package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/services-gateway/internal/logging"
	"github.com/jonathan/services-gateway/internal/rendering"
	"github.com/jonathan/services-gateway/internal/server/ratelimit"
	"go.uber.org/zap"
)

// handleServices resolves the requested node and renders its page document.
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	subpath, mode, ok := matchRoute(r.URL.Path)
	if !ok {
		s.notFound(w)
		return
	}

	resolved, err := s.store.Resolve(subpath, mode)
	if err != nil {
		s.documentError(w, r, err)
		return
	}

	page, err := s.renderer.Render(resolved)
	if err != nil {
		s.documentError(w, r, err)
		return
	}
	defer page.Close()

	page.Write(w, r)
}

// documentError maps a resolve or render error onto a response. Missing
// documents are an expected outcome and only logged at debug level.
func (s *Server) documentError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context(), s.logger)

	status := HTTPStatus(err)
	if status == http.StatusNotFound {
		logger.Debug("document not found", zap.Error(err))
		s.notFound(w)
		return
	}

	logger.Error("failed to serve document", zap.Int("status", status), zap.Error(err))
	http.Error(w, http.StatusText(status), status)
}

// notFound writes the fixed not-found body.
func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", rendering.ContentTypeHTML)
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, rendering.NotFoundBody)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("failed to encode JSON response", zap.Error(err))
	}
}

// withRateLimit rejects requests over the client's rate limit with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID returns the client IP from RemoteAddr. Forwarded headers are
// not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	logging.FromContext(r.Context(), s.logger).Info("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, r, http.StatusTooManyRequests, response)
}
