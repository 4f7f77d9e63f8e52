package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/heartmarshall/hearme-backend/pkg/ctxutil"
)

// Recovery turns a handler panic into a 500 JSON error and one log record
// carrying the request id and the stack. http.ErrAbortHandler is re-raised
// so net/http can drop the connection.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				requestID := ctxutil.RequestIDFromCtx(r.Context())
				if requestID == "" {
					requestID = w.Header().Get(RequestIDHeader)
				}
				attrs := []slog.Attr{
					slog.Any("panic", v),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", requestID),
					slog.String("stack", string(debug.Stack())),
				}
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				// Too late for a clean error once the handler started the response.
				if !sw.wroteHeader {
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
