package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Haymooed/BallsDex-Event-Package/internal/crafting"
	"github.com/Haymooed/BallsDex-Event-Package/internal/craftlog"
	"github.com/Haymooed/BallsDex-Event-Package/internal/database"
	"github.com/Haymooed/BallsDex-Event-Package/internal/event"
	"github.com/Haymooed/BallsDex-Event-Package/internal/handler"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/metrics"
	"github.com/Haymooed/BallsDex-Event-Package/internal/player"
)

// Server hosts the crafting API.
type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer wires the router, middleware stack, and all route handlers.
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool,
	craftingService crafting.Service, craftLogService craftlog.Service,
	playerService player.Service, eventService event.Service) *Server {

	r := chi.NewRouter()

	// Chi middleware executes in order defined, outermost first
	monitor := NewActivityMonitor()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, monitor))
	r.Use(RateLimitMiddleware(trustedProxies, monitor))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/craft", func(r chi.Router) {
			r.Post("/", handler.HandleCraft(craftingService, playerService))
			r.Post("/auto", handler.HandleAutoCraft(craftingService, playerService))
			r.Post("/auto/stop", handler.HandleAutoCraftStop(craftingService, playerService))
			r.Get("/history", handler.HandleGetCraftHistory(craftLogService, playerService))
		})

		r.Get("/recipes", handler.HandleGetRecipes(craftingService))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", handler.HandleListActiveEvents(eventService))
			r.Get("/{name}", handler.HandleGetEvent(eventService))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics probes are too chatty to log
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
