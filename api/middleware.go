package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"comms-hub/ratelimit"
)

// Policy carries the admission windows for the two entry points.
type Policy struct {
	WriteMaxRequests int
	WriteWindow      time.Duration
	ReadMaxRequests  int
	ReadWindow       time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		WriteMaxRequests: ratelimit.DefaultMaxRequests,
		WriteWindow:      ratelimit.DefaultWindow,
		ReadMaxRequests:  ratelimit.DefaultMaxRequests,
		ReadWindow:       ratelimit.DefaultWindow,
	}
}

// rateLimited guards an endpoint with the admission window. The
// identifier is the caller's session when present, the network address
// otherwise.
func (h *Handler) rateLimited(maxRequests int, window time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := limitIdentifier(r)
		if !h.limiter.Admit(identifier, maxRequests, window) {
			h.monitoring.IncrRejectedWrites()
			retry := h.limiter.RetryAfter(identifier)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// authenticated rejects callers the access verifier could not resolve.
func (h *Handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := h.verifier.Verify(r)
		if !identity.Authenticated {
			h.monitoring.IncrRejectedWrites()
			writeError(w, http.StatusUnauthorized, "caller is not authenticated")
			return
		}
		h.log.Debug("Write authorized",
			"userId", identity.UserID, "role", identity.Role, "demo", identity.Demo)
		next(w, r)
	}
}

func limitIdentifier(r *http.Request) string {
	if c, err := r.Cookie("session"); err == nil && c.Value != "" {
		return "session:" + c.Value
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-Demo-Mode")

		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
