package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	mW "github.com/tuckshop/backend/internal/middleware"
	"github.com/tuckshop/backend/internal/models"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Auth         AuthAPI
	Accounts     AccountAPI
	Badges       BadgeRenderer
	Queries      QueryAPI
	Transactions TransactionAPI
	Items        ItemAPI
	Schools      SchoolAPI
	Health       *HealthHandler

	// AuthLimiter guards register and login. Nil disables limiting.
	AuthLimiter *mW.RateLimiter

	AllowedOrigins []string
	ItemImagesDir  string
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger.Named("http")

	authHandler := NewAuthHandler(cfg.Auth, cfg.Accounts, cfg.Badges, logger)
	userHandler := NewUserHandler(cfg.Accounts, cfg.Queries, logger)
	itemHandler := NewItemHandler(cfg.Items, cfg.Queries, logger)
	transactionHandler := NewTransactionHandler(cfg.Transactions, logger)
	schoolHandler := NewSchoolHandler(cfg.Schools, cfg.Queries, logger)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Handle("/static/item-images/*", http.StripPrefix("/static/item-images/",
		mW.NewItemImageServer(cfg.ItemImagesDir, logger)))

	authenticate := mW.AuthMiddleware(cfg.Auth)
	adminOnly := mW.RequireRole(models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Handler)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})
		r.Get("/items", itemHandler.List)
		r.Get("/items/{id}", itemHandler.Get)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/account", authHandler.Account)
			r.Get("/auth/account/badge", authHandler.Badge)

			r.Post("/transactions", transactionHandler.Create)
			r.Get("/transactions", transactionHandler.ListOwn)
			r.Get("/transactions/{id}", transactionHandler.Get)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/transactions/all", transactionHandler.ListAll)

				r.Post("/items", itemHandler.Create)
				r.Put("/items/{id}", itemHandler.Update)
				r.Delete("/items/{id}", itemHandler.Delete)

				r.Get("/users", userHandler.List)
				r.Post("/users", userHandler.Create)
				r.Put("/users/{id}", userHandler.Update)
				r.Delete("/users/{id}", userHandler.Delete)

				r.Get("/schools", schoolHandler.List)
				r.Post("/schools", schoolHandler.Create)
			})
		})
	})

	return r
}
