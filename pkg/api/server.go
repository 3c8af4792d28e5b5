// Package api serves the spatial operations and the annotation pipeline
// over HTTP.
//
// # Routes
//
//	GET    /healthz
//	POST   /v1/bounds        {scene, shape}          → bounding box
//	POST   /v1/gap           {scene, shapes: [a, b]} → gap or null
//	POST   /v1/overlap       {scene, shapes: [a, b]} → four regions
//	POST   /v1/place         {target, frame, glyph}  → placed glyph
//	POST   /v1/annotate      {scene, options}        → batch (+ artifacts)
//	GET    /v1/batches
//	GET    /v1/batches/{id}
//	DELETE /v1/batches/{id}
//
// Scenes use the same document format as scene files (see pkg/io).
//
// # Errors
//
// Failures are returned as {"error": {"code": ..., "message": ...}}. Expected
// geometric outcomes map to 4xx statuses: NOT_IN_FRAME is 422, GAP_EXISTS
// and AMBIGUOUS_STACK_ORDER are 409, invalid input is 400.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/redline/pkg/observability"
	"github.com/matzehuels/redline/pkg/pipeline"
	"github.com/matzehuels/redline/pkg/store"
)

// DefaultRequestTimeout bounds a single request.
const DefaultRequestTimeout = 60 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store // nil disables batch persistence
	logger   *log.Logger
	defaults pipeline.Options
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists annotated batches and enables the /v1/batches routes.
func WithStore(s store.Store) Option { return func(srv *Server) { srv.store = s } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithDefaults sets the placement defaults applied before request options.
func WithDefaults(o pipeline.Options) Option { return func(srv *Server) { srv.defaults = o } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{runner: runner, logger: runner.Logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/bounds", s.handleBounds)
		r.Post("/gap", s.handleGap)
		r.Post("/overlap", s.handleOverlap)
		r.Post("/place", s.handlePlace)
		r.Post("/annotate", s.handleAnnotate)

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", s.handleListBatches)
			r.Get("/{id}", s.handleGetBatch)
			r.Delete("/{id}", s.handleDeleteBatch)
		})
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// observe reports every finished request to the API hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.API().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
