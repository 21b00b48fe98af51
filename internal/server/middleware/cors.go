package middleware

import (
	"net/http"
	"strings"
)

// Headers browsers may send on cross-origin API calls: JSON bodies plus the
// two auth carriers the Auth middleware accepts.
const (
	corsAllowHeaders = "Content-Type, Authorization, X-API-Key"
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
	corsMaxAge       = "86400"
)

// CORS returns middleware that answers cross-origin requests for the allowed
// origins and short-circuits preflights. An empty allowedOrigins list allows
// every origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && originAllowed(origin, allowedOrigins) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
