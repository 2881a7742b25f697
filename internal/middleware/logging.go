package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scrollr/scrollr/internal/logging"
)

// RequestLogger is chi's RequestLogger writing one structured line per
// request to log. Recoverer reports panics through the same entry.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&logFormatter{log: log})
}

type logFormatter struct {
	log logging.Logger
}

func (f *logFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &logEntry{
		ctx: r.Context(),
		log: f.log.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", chimw.GetReqID(r.Context()),
		),
	}
}

type logEntry struct {
	ctx context.Context
	log logging.Logger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	e.log.Info(e.ctx, "http request", "status", status, "bytes", bytes, "duration", elapsed)
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.log.Error(e.ctx, "http handler panic", "panic", v, "stack", string(stack))
}
