// Package http exposes the portal over a REST API: record management,
// aggregation reads, report rendering, CSV export and login.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/grade-portal/grade-portal/internal/application/command"
	"github.com/grade-portal/grade-portal/internal/application/query"
	"github.com/grade-portal/grade-portal/internal/application/report"
	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/infrastructure/service"
	"github.com/grade-portal/grade-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// AllowedOrigins - allowed origins for CORS.
	AllowedOrigins []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the HTTP handlers call into.
type Dependencies struct {
	// Command handlers (write side)
	RegisterStudent *command.RegisterStudentHandler
	UpdateStudent   *command.UpdateStudentHandler
	RemoveStudent   *command.RemoveStudentHandler
	AddSubject      *command.AddSubjectHandler
	UpdateSubject   *command.UpdateSubjectHandler
	RemoveSubject   *command.RemoveSubjectHandler
	RecordMark      *command.RecordMarkHandler
	AmendMark       *command.AmendMarkHandler
	RemoveMark      *command.RemoveMarkHandler

	// Read side
	Students   record.StudentRepository
	Subjects   record.SubjectRepository
	Marks      record.MarkRepository
	Aggregates *query.AggregateService
	Reports    *report.Builder
	Exporter   *report.Exporter

	// Auth
	Auth *service.AuthService

	// Pinger reports store reachability for the health endpoint.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Logger
	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger,
	}

	if s.logger == nil {
		s.logger = logger.Default()
	}

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.buildRouter(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// buildRouter configures the middleware chain and all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.With(s.requireSession).Post("/", s.handleRegisterStudent)
			r.Get("/{id}", s.handleGetStudent)
			r.With(s.requireSession).Put("/{id}", s.handleUpdateStudent)
			r.With(s.requireSession).Delete("/{id}", s.handleRemoveStudent)
			r.Get("/{id}/marks", s.handleListStudentMarks)
			r.Get("/{id}/average", s.handleStudentAverage)
			r.Get("/{id}/report", s.handleStudentReport)
			r.Get("/{id}/export", s.handleExportStudent)
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", s.handleListSubjects)
			r.With(s.requireSession).Post("/", s.handleAddSubject)
			r.Get("/{id}", s.handleGetSubject)
			r.With(s.requireSession).Put("/{id}", s.handleUpdateSubject)
			r.With(s.requireSession).Delete("/{id}", s.handleRemoveSubject)
			r.Get("/{id}/average", s.handleClassAverage)
		})

		r.Route("/marks", func(r chi.Router) {
			r.Get("/", s.handleListMarks)
			r.With(s.requireSession).Post("/", s.handleRecordMark)
			r.Get("/{id}", s.handleGetMark)
			r.With(s.requireSession).Put("/{id}", s.handleAmendMark)
			r.With(s.requireSession).Delete("/{id}", s.handleRemoveMark)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/top-performers", s.handleTopPerformers)
			r.Get("/grade-distribution", s.handleGradeDistribution)
			r.Get("/export", s.handleExportAll)
		})
	})

	return r
}

// loggingMiddleware logs each request with latency and status.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Latency(time.Since(start)),
		)
	})
}

// requireSession guards mutating routes behind a valid session token.
// Servers built without an AuthService leave the routes open.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.deps.Auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.logger.Debug("session verified", logger.Username(identity.Username))
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start begins listening. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server starting", logger.String("addr", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
