package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopfront/internal/config"
	custommiddleware "shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"
	"shopfront/internal/transport"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	router := chi.NewRouter()

	// Basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Metrics
	registry := prometheus.NewRegistry()
	metrics := custommiddleware.NewMetrics(registry)
	router.Use(metrics.Middleware)
	router.Method(http.MethodGet, "/metrics", custommiddleware.MetricsHandler(registry))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Rate limiting backed by Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		KeyPrefix:         "shopfront:ratelimit",
	}, logger)
	router.Use(rateLimit)

	// Long-lived repositories (auth flow)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Per-request unit-of-work factories (admin form flow)
	productStores := service.ProductStoreFactory(func() repository.ProductRepository {
		return repository.NewProductStore(db)
	})
	categoryStores := service.CategoryStoreFactory(func() repository.CategoryRepository {
		return repository.NewCategoryStore(db)
	})
	contentStores := service.ContentStoreFactory(func() repository.ContentRepository {
		return repository.NewContentStore(db)
	})

	// Collaborator services
	imageService := service.NewImageService(&service.DiskFileStore{Dir: cfg.Uploads.Dir}, logger)
	sizeService := service.NewSizeService()

	// Orchestrators
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productStores, categoryStores, imageService, sizeService, logger)
	categoryService := service.NewCategoryService(categoryStores, logger)
	contentService := service.NewContentService(contentStores, logger)

	// Handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	contentHandler := transport.NewContentHandler(contentService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	authHandler.RegisterRoutes(router, authMiddleware)

	// The whole admin surface sits behind auth + the administrator gate.
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireAdmin(logger))

		catalogHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
		contentHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
