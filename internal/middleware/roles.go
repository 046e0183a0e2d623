package middleware

import "net/http"

// RoleAllowed is the capability check: it reports whether the actual role
// satisfies the declared requirement. An empty requirement allows everyone.
func RoleAllowed(required []string, actual string) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if role == actual {
			return true
		}
	}
	return false
}

// RequireRoles rejects requests whose authenticated role is not in the
// required set. It must run after AuthMiddleware.
func RequireRoles(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleAllowed(required, Role(r.Context())) {
				http.Error(w, "Access denied: insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
