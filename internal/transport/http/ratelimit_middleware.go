package http

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"utme-prep-service/internal/domain"
)

// rateLimited gates a handler behind the injected limiter. The client key is
// the user ID when present, otherwise the remote IP. Denied requests get 429
// with the standard X-RateLimit-* headers and a Retry-After hint.
func (a *API) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.limiter == nil {
			next(w, r)
			return
		}

		key := r.Header.Get(userIDHeader)
		if key == "" {
			key = clientIP(r)
		}

		decision, err := a.limiter.Allow(r.Context(), key)
		if err != nil {
			// A broken limiter backend must not take the endpoint down.
			log.Printf("rate limiter failed for %s: %v", key, err)
			next(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, domain.ErrRateLimited)
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
