// Package server is the composition root: it wires the database,
// repositories, services, and handlers together, defines every route, and
// owns startup and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arefin/memotube/internal/auth"
	"github.com/arefin/memotube/internal/cache"
	"github.com/arefin/memotube/internal/config"
	"github.com/arefin/memotube/internal/handler"
	"github.com/arefin/memotube/internal/middleware"
	sqliteRepo "github.com/arefin/memotube/internal/repository/sqlite"
	"github.com/arefin/memotube/internal/service"
	"github.com/arefin/memotube/internal/youtube"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger

	db         *sqliteRepo.DB
	redisCache *cache.Redis // nil when Redis is not configured
}

// New assembles the full dependency chain. Each layer receives only the
// interfaces it needs: services get repositories, handlers get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// metadataProvider builds the lookup chain: Data API when a key is present,
// the deterministic offline provider as the final word, and a cache (Redis
// when configured, in-process otherwise) in front of the whole thing.
func (s *Server) metadataProvider() youtube.Provider {
	var provider youtube.Provider = youtube.NewOfflineProvider()
	if s.cfg.YouTubeAPIKey != "" {
		provider = youtube.NewFallbackProvider(
			youtube.NewDataAPIProvider(s.cfg.YouTubeAPIKey, ""),
			provider,
		)
	}

	var metaCache cache.MetadataCache
	if s.cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		redisCache, err := cache.NewRedis(ctx, s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.CacheTTL)
		if err != nil {
			// Cache is an optimization; a dead Redis must not stop the boot.
			s.logger.Warn("redis unavailable, using in-memory metadata cache",
				slog.String("addr", s.cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		} else {
			s.redisCache = redisCache
			metaCache = redisCache
		}
	}
	if metaCache == nil {
		metaCache = cache.NewMemory(s.cfg.CacheTTL)
	}

	return cache.NewCachedProvider(provider, metaCache)
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(
		s.cfg.AccessSecret, s.cfg.RefreshSecret,
		s.cfg.AccessTTL, s.cfg.RefreshTTL,
	)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordServiceWithCost(s.cfg.BcryptCost)

	var google *auth.GoogleProvider
	if s.cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)
	videoService := service.NewVideoService(s.db, s.metadataProvider(), s.logger)
	memoService := service.NewMemoService(s.db, s.db, s.logger)
	taskService := service.NewTaskService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.logger)
	videoHandler := handler.NewVideoHandler(videoService, s.logger)
	memoHandler := handler.NewMemoHandler(memoService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	requireAuth := auth.RequireAuth(tokens, handler.ErrorWriter())

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth/google", func(r chi.Router) {
		r.Get("/login", authHandler.HandleGoogleLogin)
		r.Get("/callback", authHandler.HandleGoogleCallback)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/refresh", authHandler.HandleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authHandler.HandleProfile)
				r.Put("/profile", authHandler.HandleUpdateProfile)
				r.Delete("/profile", authHandler.HandleDeactivate)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/videos", func(r chi.Router) {
				r.Post("/", videoHandler.HandleCreate)
				r.Get("/", videoHandler.HandleList)
				r.Get("/{id}", videoHandler.HandleGet)
				r.Put("/{id}", videoHandler.HandleUpdate)
				r.Delete("/{id}", videoHandler.HandleDelete)
			})

			r.Route("/memos", func(r chi.Router) {
				r.Post("/", memoHandler.HandleCreate)
				r.Get("/", memoHandler.HandleList)
				r.Get("/{id}", memoHandler.HandleGet)
				r.Put("/{id}", memoHandler.HandleUpdate)
				r.Delete("/{id}", memoHandler.HandleDelete)
				r.Post("/{id}/tasks", taskHandler.HandleCreateFromMemo)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.HandleCreate)
				r.Get("/", taskHandler.HandleList)
				r.Get("/{id}", taskHandler.HandleGet)
				r.Put("/{id}", taskHandler.HandleUpdate)
				r.Delete("/{id}", taskHandler.HandleDelete)
			})
		})
	})

	return nil
}

// Router exposes the configured router, mainly for tests that drive the
// full stack through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests and
// closes the database and cache connections.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) close() {
	if s.redisCache != nil {
		if err := s.redisCache.Close(); err != nil {
			s.logger.Warn("closing redis", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
