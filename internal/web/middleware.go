package web

import (
	"net/http"
)

// NoStore marks responses as uncacheable. Login pages carry per-submission
// feedback and must not be served from a cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
