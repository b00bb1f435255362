package app

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/internal/database"
	"github.com/outfitai/backend/internal/handlers"
	"github.com/outfitai/backend/internal/messaging"
	"github.com/outfitai/backend/internal/middleware"
	"github.com/outfitai/backend/internal/repository"
	"github.com/outfitai/backend/internal/scraping"
	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	gemini   *services.GeminiClient
	events   *messaging.EventPublisher
	auth     *services.AuthService
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}
	registerValidators()

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	gemini, err := services.NewGeminiClient(context.Background(), &cfg.Gemini, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generative client: %w", err)
	}
	app.gemini = gemini

	// Repositories
	userRepo := repository.NewUserRepository(db.PG, app.logger)
	wardrobeRepo := repository.NewWardrobeRepository(db.PG, app.logger)
	recRepo := repository.NewRecommendationRepository(db.PG, app.logger)
	savedRepo := repository.NewSavedOutfitRepository(db.PG, app.logger)
	productRepo := repository.NewProductRepository(db.PG, app.logger)

	// Services
	app.events = messaging.NewEventPublisher(&cfg.Kafka, app.logger)
	app.auth = services.NewAuthService(&cfg.Auth, userRepo, db.Redis, app.logger)

	analyzer := services.NewImageAnalyzer(gemini, cfg.Pipeline.ImageFetchTimeout, app.logger)
	weather := services.NewWeatherService(&cfg.Weather, db.Redis, app.logger)
	scraper := scraping.NewService(&cfg.Scraper, app.logger)
	enricher := services.NewAttributeEnricher(gemini, cfg.Pipeline.EnrichmentTimeout, app.logger)
	resolver := services.NewProductResolver(scraper, enricher, productRepo, app.logger)
	recommender := services.NewRecommenderService(
		gemini, analyzer, weather, resolver, recRepo, savedRepo,
		app.events, db.Redis, cfg, app.logger)

	app.handlers = &handlers.Handlers{
		Health:         handlers.NewHealthHandler(db, gemini.Available, app.logger),
		Auth:           handlers.NewAuthHandler(app.auth, app.logger),
		User:           handlers.NewUserHandler(userRepo, app.logger),
		Wardrobe:       handlers.NewWardrobeHandler(wardrobeRepo, app.logger),
		Recommendation: handlers.NewRecommendationHandler(recommender, userRepo, wardrobeRepo, app.logger),
		Outfits:        handlers.NewOutfitsHandler(recommender, app.logger),
	}

	app.setupRouter()
	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.events.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing event publisher")
	}
	if err := a.gemini.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing generative client")
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}
	return nil
}

// registerValidators hooks the domain enums into gin's binding layer
// so request validation rejects unknown values before handlers run.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("itemcategory", func(fl validator.FieldLevel) bool {
		return models.ItemCategory(fl.Field().String()).Valid()
	})
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(cors.New(a.corsConfig()))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", a.handlers.Auth.Register)
			auth.POST("/login", a.handlers.Auth.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(a.auth, a.logger))
		{
			protected.GET("/users/me", a.handlers.User.GetProfile)
			protected.PUT("/users/me", a.handlers.User.UpdateProfile)

			wardrobe := protected.Group("/wardrobe")
			{
				wardrobe.GET("", a.handlers.Wardrobe.List)
				wardrobe.POST("", a.handlers.Wardrobe.Create)
				wardrobe.PUT("/:id", a.handlers.Wardrobe.Update)
				wardrobe.DELETE("/:id", a.handlers.Wardrobe.Delete)
				wardrobe.POST("/worn", a.handlers.Wardrobe.MarkWorn)
			}

			recommendations := protected.Group("/recommendations")
			{
				recommendations.POST("", a.handlers.Recommendation.Generate)
				recommendations.GET("", a.handlers.Recommendation.List)
				recommendations.GET("/:id", a.handlers.Recommendation.Get)
			}

			outfits := protected.Group("/outfits/saved")
			{
				outfits.POST("", a.handlers.Outfits.Save)
				outfits.GET("", a.handlers.Outfits.List)
				outfits.GET("/:id", a.handlers.Outfits.Get)
				outfits.DELETE("/:id", a.handlers.Outfits.Delete)
			}
		}
	}

	a.router = router
}

func (a *App) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if len(a.config.Security.CORS.AllowedOrigins) > 0 {
		cfg.AllowOrigins = a.config.Security.CORS.AllowedOrigins
		// Credentials are only safe with an explicit origin list.
		cfg.AllowCredentials = true
	} else {
		cfg.AllowAllOrigins = true
	}
	if len(a.config.Security.CORS.AllowedMethods) > 0 {
		cfg.AllowMethods = a.config.Security.CORS.AllowedMethods
	}
	if len(a.config.Security.CORS.AllowedHeaders) > 0 {
		cfg.AllowHeaders = a.config.Security.CORS.AllowedHeaders
	}
	return cfg
}
