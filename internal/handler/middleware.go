package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/monitoring"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const authContextKey contextKey = "auth"

// TokenParser validates a bearer token and reconstructs the caller's
// identity. *service.UserService satisfies it.
type TokenParser interface {
	ParseToken(token string) (model.AuthContext, error)
}

// Authenticate extracts the bearer token and attaches a request-scoped
// AuthContext. There is no session state; every handler reads identity
// from the request context explicitly.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
				return
			}

			auth, err := parser.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role. Must be mounted
// after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authFrom(r).IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authFrom returns the AuthContext attached by Authenticate. The zero
// value means an unauthenticated request.
func authFrom(r *http.Request) model.AuthContext {
	auth, _ := r.Context().Value(authContextKey).(model.AuthContext)
	return auth
}

// AccessLog writes one structured log line per request and feeds the
// request duration histogram.
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			monitoring.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), elapsed)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", elapsed),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
