// Package api provides the HTTP API server and handlers for the LinkVault application.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linkvaultapp/linkvault-server/internal/config"
	"github.com/linkvaultapp/linkvault-server/internal/http/response"
	"github.com/linkvaultapp/linkvault-server/internal/media"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService       *service.AuthService
	collectionService *service.CollectionService
	bookmarkService   *service.BookmarkService
	canvasService     *service.CanvasService
	mediaStorage      *media.Storage
	allowedOrigins    []string
	maxUploadBytes    int64
	authLimiter       *RateLimiter
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	collectionService *service.CollectionService,
	bookmarkService *service.BookmarkService,
	canvasService *service.CanvasService,
	mediaStorage *media.Storage,
	cfg *config.Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:       authService,
		collectionService: collectionService,
		bookmarkService:   bookmarkService,
		canvasService:     canvasService,
		mediaStorage:      mediaStorage,
		allowedOrigins:    cfg.CORS.AllowedOrigins,
		maxUploadBytes:    cfg.Media.MaxUploadBytes,
		authLimiter:       NewRateLimiter(20, 20),
		router:            chi.NewRouter(),
		logger:            logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the server's background workers.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  s.allowOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-User-Email"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// allowOrigin permits the configured origins plus any browser extension.
func (s *Server) allowOrigin(_ *http.Request, origin string) bool {
	if strings.HasPrefix(origin, "chrome-extension://") {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited per IP).
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.authLimiter, s.logger))
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireAuth).Get("/check", s.handleAuthCheck)
		})

		// Current user.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Collections.
		r.Route("/collections", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCollection)
			r.Get("/", s.handleListCollections)
			r.Get("/{id}", s.handleGetCollection)
			r.Patch("/{id}", s.handleUpdateCollection)
			r.Delete("/{id}", s.handleDeleteCollection)
			r.Get("/{id}/canvas", s.handleGetCanvas)
		})

		// Bookmarks.
		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateBookmark)
			r.Get("/", s.handleListBookmarks)
			r.Get("/{id}", s.handleGetBookmark)
			r.Patch("/{id}", s.handleUpdateBookmark)
			r.Delete("/{id}", s.handleDeleteBookmark)
		})

		// Tags.
		r.With(s.requireAuth).Get("/tags", s.handleListTags)

		// Canvas.
		r.Route("/canvas", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetCanvasQuery)
			r.Post("/", s.handleSaveCanvas)
		})

		// Stored media files.
		r.With(s.requireAuth).Get("/media/{filename}", s.handleServeMedia)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
