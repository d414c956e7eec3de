package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vbonduro/fieldinspect/internal/mapview"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/service"
)

// readiness reports whether the inspector store finished initializing.
type readiness interface {
	Initialized() bool
}

type Server struct {
	inspectors *service.InspectorService
	inspection *service.InspectionService
	visualizer *mapview.Visualizer
	store      readiness
	metrics    *metrics.Metrics
	router     chi.Router
	logger     *slog.Logger
}

func NewServer(
	inspectors *service.InspectorService,
	inspection *service.InspectionService,
	visualizer *mapview.Visualizer,
	store readiness,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	s := &Server{
		inspectors: inspectors,
		inspection: inspection,
		visualizer: visualizer,
		store:      store,
		metrics:    m,
		logger:     logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/inspectors", func(r chi.Router) {
		r.Get("/", s.handleListInspectors)
		r.Get("/names", s.handleInspectorNames)
		r.Post("/", s.handleAddInspector)
		r.Delete("/{id}", s.handleRemoveInspector)
	})

	r.Get("/work-types", s.handleWorkTypes)

	r.Route("/draft", func(r chi.Router) {
		r.Get("/", s.handleGetDraft)
		r.Patch("/", s.handlePatchDraft)
		r.Post("/reset", s.handleResetDraft)
		r.Put("/work-type", s.handleSetWorkType)
		r.Put("/work-result", s.handleSetWorkResult)
		r.Post("/photos", s.handleCapturePhotos)
		r.Delete("/photos/{index}", s.handleRemovePhoto)
	})

	r.Get("/photos/{name}", s.handleGetPhoto)

	r.Post("/entries", s.handleSubmitEntry)
	r.Get("/entries", s.handleListEntries)
	r.Post("/reports", s.handleExport)
	r.Get("/map", s.handleMap)
	return r
}

// securityHeaders adds defensive HTTP response headers to every response.
// The map page loads Leaflet and tiles from public CDNs and embeds photos as
// data URIs.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"img-src 'self' data: https://*.tile.openstreetmap.org https://unpkg.com; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr with the same timeouts the
// photo upload path needs.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"initialized": s.store.Initialized(),
	})
}
