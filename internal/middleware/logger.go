package middleware

import (
	"net/http"

	"app/internal/logger"
)

// LoggerMiddleware logs incoming HTTP requests.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		logger := logger.New()
		logger.Debug().Str("remote", r.RemoteAddr).Msgf("%s %s", r.Method, r.URL.RequestURI())
	})
}
