// shared/api/middleware.go
package api

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Admin-Token"

type privilegeKey struct{}

// WithPrivilege marks ctx as coming from an admin caller.
func WithPrivilege(ctx context.Context, privileged bool) context.Context {
	return context.WithValue(ctx, privilegeKey{}, privileged)
}

// IsPrivileged reports whether the request context was authenticated as admin.
func IsPrivileged(ctx context.Context) bool {
	v, _ := ctx.Value(privilegeKey{}).(bool)
	return v
}

// PrivilegeMiddleware compares the admin header against adminToken in
// constant time. An empty adminToken never grants privilege.
func PrivilegeMiddleware(adminToken string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(AdminTokenHeader)
			privileged := adminToken != "" && presented != "" &&
				subtle.ConstantTimeCompare([]byte(presented), []byte(adminToken)) == 1
			next.ServeHTTP(w, r.WithContext(WithPrivilege(r.Context(), privileged)))
		})
	}
}

// LoggingMiddleware logs method, path, status and duration of each request.
func LoggingMiddleware(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{w: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)
			if r.URL.Path == "/healthz" {
				return
			}
			logger.Printf("INFO: %s %s from %s - status %d in %v", r.Method, r.URL.Path, r.RemoteAddr, lrw.statusCode, time.Since(start))
		})
	}
}

// loggingResponseWriter is a wrapper to capture the HTTP status code.
type loggingResponseWriter struct {
	w          http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) Header() http.Header {
	return lrw.w.Header()
}

func (lrw *loggingResponseWriter) Write(buf []byte) (int, error) {
	return lrw.w.Write(buf)
}

func (lrw *loggingResponseWriter) WriteHeader(statusCode int) {
	lrw.statusCode = statusCode
	lrw.w.WriteHeader(statusCode)
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+AdminTokenHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
