package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		actual   string
		want     bool
	}{
		{"no requirement allows anyone", nil, "user", true},
		{"matching role", []string{"admin"}, "admin", true},
		{"role in set", []string{"admin", "user"}, "user", true},
		{"role not in set", []string{"admin"}, "user", false},
		{"empty actual role", []string{"admin"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleAllowed(tt.required, tt.actual))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRoles("admin")(next)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleContextKey, "admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleContextKey, "user"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
