package api

import (
	"net/http"
	"strings"
	"time"

	"hanzi/internal/metrics"
	"hanzi/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestLogger logs every request and records it under its route pattern
func requestLogger(logger *zap.Logger, collector *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)

			collector.RecordHTTPRequest(r.Method, route, status, duration)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// requirePassword only lets through requests carrying the bot password as a
// bearer token. Without a configured password every request is rejected.
func requirePassword(auth *service.AuthService, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			password, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || password == "" || auth == nil || !auth.CheckPassword(password) {
				logger.Warn("Unauthorized request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
