package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/dbrt/internal/logger"
)

// NewRouter builds the chi router serving h's endpoints, with the same
// middleware stack (request id, real IP, request logging, panic recovery,
// timeout) the teacher's pkg/api router uses.
//
// Routes:
//   - GET /healthz      - connection liveness
//   - GET /sessions     - the connection's current session, if any
//   - GET /locks        - the lock compatibility/conversion matrices
//   - GET /queryresults - a snapshot of the live query result table
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", h.Healthz)
	r.Get("/sessions", h.Sessions)
	r.Get("/locks", h.Locks)
	r.Get("/queryresults", h.QueryResults)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("adminapi request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("adminapi request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
