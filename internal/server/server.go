// Package server provides the HTTP REST API for the research and content
// pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/trendcast/internal/analysis"
	"github.com/jonathan/trendcast/internal/config"
	"github.com/jonathan/trendcast/internal/db"
	"github.com/jonathan/trendcast/internal/llm"
	"github.com/jonathan/trendcast/internal/orchestrator"
	"github.com/jonathan/trendcast/internal/publish"
	"github.com/jonathan/trendcast/internal/server/middleware"
	"github.com/jonathan/trendcast/internal/server/ratelimit"
	"github.com/jonathan/trendcast/internal/sources"
	"github.com/jonathan/trendcast/internal/video"
	"github.com/jonathan/trendcast/internal/workflow"
)

// Server represents the HTTP server and the services behind it.
type Server struct {
	httpServer   *http.Server
	db           *db.DB
	llmClient    llm.Client
	orchestrator *orchestrator.Orchestrator
	sequencer    *workflow.Sequencer
	rateLimiter  *ratelimit.Limiter
	jwtService   *JWTService
	userService  *UserService
	authHandler  *AuthHandler
}

// New creates a server instance with all services wired. The job worker pool
// is started in Start.
func New(cfg config.Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	registry := sources.NewRegistry(
		sources.NewRedditClient(),
		sources.NewGitHubClient(cfg.GitHubToken),
		sources.NewHackerNewsClient(),
		sources.NewGoogleTrendsClient(cfg.UseBrowser),
	)

	s := &Server{
		db:        database,
		llmClient: llmClient,
		orchestrator: orchestrator.New(database, registry, analysis.New(llmClient), orchestrator.Options{
			Workers:   cfg.Workers,
			QueueSize: cfg.QueueSize,
		}),
		sequencer: workflow.NewSequencer(
			database,
			workflow.NewResearcher(registry),
			workflow.NewScriptWriter(llmClient),
			video.NewClient(cfg.VideoServiceURL, cfg.VideoAPIKey),
			publish.NewClient(cfg.PublishServiceURL, cfg.PublishAPIKey),
		),
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	addr := cfg.ListenAddr
	if addr == "" {
		addr = ":8080"
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for synchronous workflow runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the router. Everything except health and auth requires a
// bearer token.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	api := http.NewServeMux()
	api.HandleFunc("POST /configurations", s.handleCreateConfiguration)
	api.HandleFunc("GET /configurations", s.handleListConfigurations)
	api.HandleFunc("GET /configurations/{id}", s.handleGetConfiguration)
	api.HandleFunc("PUT /configurations/{id}", s.handleUpdateConfiguration)
	api.HandleFunc("DELETE /configurations/{id}", s.handleDeleteConfiguration)

	api.HandleFunc("POST /jobs", s.handleCreateJob)
	api.HandleFunc("GET /jobs", s.handleListJobs)
	api.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	api.HandleFunc("GET /jobs/{id}/result", s.handleGetJobResult)
	api.HandleFunc("POST /jobs/{id}/cancel", s.handleCancelJob)

	api.HandleFunc("POST /workflows", s.handleCreateWorkflow)
	api.HandleFunc("GET /workflows/pending-approvals", s.handleListPendingApprovals)
	api.HandleFunc("GET /workflows/{id}", s.handleGetWorkflow)
	api.HandleFunc("POST /workflows/{id}/approval", s.handleWorkflowApproval)

	api.HandleFunc("GET /limits", s.handleGetLimits)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(api)
	mux.Handle("/", authed)
	return mux
}

// Start launches the worker pool, begins listening and blocks until an
// interrupt, then drains and shuts everything down.
func (s *Server) Start() error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	s.orchestrator.Start(workerCtx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Let queued jobs finish before the process exits.
	s.orchestrator.Stop()

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.llmClient.Close(); err != nil {
		log.Printf("Error closing LLM client: %v", err)
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service-layer error onto the wire.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
