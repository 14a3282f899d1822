// Package middleware contains HTTP middleware for the controller API.
package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"clipline/pkg/api"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits enqueue requests per project. A client polling
// its own project stays cheap; a runaway client cannot flood the queue for
// everyone else.
// rps=0 means unlimited.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limiters := sync.Map{} // projectID -> *cachedLimiter

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.PathValue("projectID")
			if key == "" {
				key = r.RemoteAddr
			}

			if rps > 0 {
				limiter := getOrCreateLimiter(&limiters, key, rps, burst, 5*time.Minute)
				if !limiter.Allow() {
					w.Header().Set("Retry-After", "1")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					json.NewEncoder(w).Encode(api.ErrorResponse{
						Error: "Too Many Requests",
						Code:  "429",
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

func getOrCreateLimiter(limiters *sync.Map, key string, rps float64, burst int, ttl time.Duration) *rate.Limiter {
	if limiter, ok := limiters.Load(key); ok {
		cached := limiter.(*cachedLimiter)
		if time.Now().Before(cached.expiresAt) {
			return cached.limiter
		}
		// expired, need to create new
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	limiters.Store(key, &cachedLimiter{
		limiter:   limiter,
		expiresAt: time.Now().Add(ttl),
	})
	return limiter
}
