package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey int

const ctxKeyRequest contextKey = iota

// requestScope is what the request middleware stores for handlers
type requestScope struct {
	id  string
	log *slog.Logger
}

// requestIDFrom returns the request id assigned by requestMiddleware.
func requestIDFrom(ctx context.Context) string {
	sc, _ := ctx.Value(ctxKeyRequest).(requestScope)
	return sc.id
}

// logFor returns the request-scoped logger, falling back to the default logger.
func logFor(ctx context.Context) *slog.Logger {
	if sc, ok := ctx.Value(ctxKeyRequest).(requestScope); ok && sc.log != nil {
		return sc.log
	}
	return slog.Default()
}

// requestMiddleware assigns each request an id and a logger tagged with it.
// A caller-supplied X-Request-ID is kept when it is a UUID.
func requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		sc := requestScope{id: id, log: slog.Default().With("rid", id)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequest, sc)))
	})
}

// responseRecorder captures the status and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.status == 0 {
		rr.status = code
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

func (rr *responseRecorder) code() int {
	if rr.status == 0 {
		return http.StatusOK
	}
	return rr.status
}

// recoveryMiddleware turns a handler panic into a 500 when nothing was written yet.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := &responseRecorder{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				logFor(r.Context()).Error("panic recovered", "panic", rec, "path", r.URL.Path)
				if rr.status == 0 {
					writeError(rr, http.StatusInternalServerError, ErrCodeInternal, internalMessage(r.Context(), "internal server error"))
				}
			}
		}()
		next.ServeHTTP(rr, r)
	})
}

// accessMiddleware counts each request by route and status class and logs it.
// Server errors log at error level, client errors at warn.
func accessMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rr, r)

			// The mux fills in r.Pattern on the request it was handed.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			status := rr.code()
			m.RecordRequest(route, status)

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logFor(r.Context()).Log(r.Context(), level, "req",
				"method", r.Method,
				"route", route,
				"path", r.URL.Path,
				"status", status,
				"bytes", rr.written,
				"dur", time.Since(start).String(),
			)
		})
	}
}

// maxBytesMiddleware caps the body of requests that carry one.
func maxBytesMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// chain applies middleware in order (first applied is outermost).
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
