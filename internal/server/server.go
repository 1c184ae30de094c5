package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quikmart/internal/config"
	"quikmart/internal/database"
	"quikmart/internal/metrics"
	custommiddleware "quikmart/internal/middleware"
	"quikmart/internal/repository"
	"quikmart/internal/service"
	"quikmart/internal/session"
	"quikmart/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports the state of a backing store
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Dependencies are the collaborators the router serves requests with.
// Redis is optional; without it requests are not rate limited.
type Dependencies struct {
	Users    service.UserService
	Products service.ProductService
	Carts    service.CartService
	Sessions *session.Manager
	Health   HealthChecker
	Metrics  *metrics.Metrics
	Redis    *redis.Client
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	cartRepo := repository.NewCartRepository(db.DB())

	store, err := session.NewStore(cfg.Session, db.DB(), redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	deps := Dependencies{
		Users:    service.NewUserService(userRepo),
		Products: service.NewProductService(productRepo, userRepo),
		Carts:    service.NewCartService(cartRepo, productRepo),
		Sessions: session.NewManager(store, cfg.Session.Secret, session.Options{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.IsProduction(),
		}),
		Health:  db,
		Metrics: metrics.New(),
		Redis:   redisClient,
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

// NewRouter assembles the middleware chain and every route
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()
	debug := !cfg.IsProduction()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(deps.Metrics.Middleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	if cfg.RateLimit.Enabled && deps.Redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "quikmart:rate_limit",
		}, logger))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", healthHandler(deps.Health))
	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	requireAuth := custommiddleware.RequireAuthenticated(deps.Sessions, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)

	transport.NewUserHandler(deps.Users, deps.Sessions, logger, debug).RegisterRoutes(router, requireAuth, requireAdmin)
	transport.NewProductHandler(deps.Products, logger, debug).RegisterRoutes(router, requireAuth)
	transport.NewCartHandler(deps.Carts, logger, debug).RegisterRoutes(router, requireAuth)

	return router
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mongo := checker.Health(r.Context())
		if mongo["status"] != "up" {
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"mongo":  mongo,
			})
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"mongo":  mongo,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.db.Close(ctx); err != nil {
		s.logger.Error("Failed to close database connection", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
