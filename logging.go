package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// NewLogger returns a JSON logger for production, or a console logger at debug level.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// AccessLogHandler logs one line per request once it has been served.
func AccessLogHandler(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		arw := NewAppResponseWriter(w)

		next.ServeHTTP(arw, r)

		logger.Info("request",
			zap.String("request_id", arw.Header().Get(RequestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("proto", r.Proto),
			zap.Int("status", arw.Code()),
			zap.Int("bytes", arw.Bytes()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}
