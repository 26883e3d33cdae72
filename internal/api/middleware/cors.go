package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS handles cross-origin requests for the dashboard. origins is a
// comma-separated allow list, "*" or empty for any origin.
//
// Preflights are answered with 204 here, so they never reach Authenticate.
func CORS(origins string) func(http.Handler) http.Handler {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:     parseOrigins(origins),
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:     []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		ExposedHeaders:     []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:             300,
		OptionsPassthrough: true,
	})
	return func(next http.Handler) http.Handler {
		return corsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func parseOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
