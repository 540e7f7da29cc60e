package server

import (
	"net/http"
	"time"

	charmLog "github.com/charmbracelet/log"
)

// withRequestLogging logs one line per request once the response completes.
func withRequestLogging(logger *charmLog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		switch {
		case recorder.statusCode >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case recorder.statusCode >= http.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Debug("http request", fields...)
		}
	})
}
