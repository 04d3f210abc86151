package middleware

import (
	"net/http"
	"time"

	"relytailors-be/internal/logger"

	"go.uber.org/zap"
)

// responseRecorder lets us capture HTTP status codes
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// AccessLog writes one structured line per request. It expects the request
// id to already be on the context.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_ip", r.RemoteAddr),
		}

		log := logger.FromCtx(r.Context())
		switch {
		case rec.statusCode >= 500:
			log.Error("http request", fields...)
		case rec.statusCode >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	})
}
