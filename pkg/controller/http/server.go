package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taller-iot/marcaje/pkg/usecase"
	"github.com/taller-iot/marcaje/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/badges", func(r chi.Router) {
			r.Get("/", s.listBadges)
			r.Get("/unclaimed", s.listUnclaimedBadges)
			r.Post("/{badgeID}/claim", s.claimBadge)
			r.Post("/{badgeID}/release", s.releaseBadge)
		})

		r.Route("/workers", func(r chi.Router) {
			r.Post("/", s.createWorker)
			r.Get("/", s.listWorkers)
			r.Get("/{workerID}", s.getWorker)
			r.Put("/{workerID}", s.updateWorker)
			r.Post("/{workerID}/deprovision", s.deprovisionWorker)
			r.Post("/{workerID}/enroll", s.enrollWorker)
			r.Get("/{workerID}/attendance", s.workerAttendance)
			r.Get("/{workerID}/attendance/active", s.activeSession)
			r.Get("/{workerID}/late-count", s.lateCount)
			r.Get("/{workerID}/access-logs", s.workerAccessLogs)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", s.attendanceHistory)
		})

		r.Route("/access-logs", func(r chi.Router) {
			r.Get("/", s.accessLogs)
			r.Get("/denied", s.deniedAccessLogs)
		})

		r.Get("/security-events", s.securityEvents)

		r.Route("/config", func(r chi.Router) {
			r.Get("/shift", s.getShiftConfig)
			r.Put("/shift", s.updateShiftConfig)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
