package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	auth model.AuthContext
	err  error
}

func (s stubParser) ParseToken(string) (model.AuthContext, error) {
	return s.auth, s.err
}

func TestAuthenticate(t *testing.T) {
	admin := model.AuthContext{UserID: "u1", Role: model.RoleAdmin, Verified: true}

	var seen model.AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authFrom(r)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token attaches auth context", func(t *testing.T) {
		handler := Authenticate(stubParser{auth: admin})(next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Bearer sometoken")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, admin, seen)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		handler := Authenticate(stubParser{auth: admin})(next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme rejected", func(t *testing.T) {
		handler := Authenticate(stubParser{auth: admin})(next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("parser failure rejected", func(t *testing.T) {
		handler := Authenticate(stubParser{err: assert.AnError})(next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("admin passes", func(t *testing.T) {
		chain := Authenticate(stubParser{auth: model.AuthContext{UserID: "u1", Role: model.RoleAdmin}})(RequireAdmin(next))
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		chain.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		chain := Authenticate(stubParser{auth: model.AuthContext{UserID: "u2", Role: model.RoleUser}})(RequireAdmin(next))
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		chain.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		rec := httptest.NewRecorder()

		RequireAdmin(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
