package config

import (
	"Coffee-Shop-Backend/internal/api/handlers"
	"Coffee-Shop-Backend/internal/api/presenters"
	"Coffee-Shop-Backend/internal/api/routes"
	"Coffee-Shop-Backend/internal/middleware"
	"Coffee-Shop-Backend/internal/utils"
	"Coffee-Shop-Backend/internal/utils/storage"
	"Coffee-Shop-Backend/pkg/drink"
	"Coffee-Shop-Backend/pkg/jwt"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the collaborators NewApp wires together. HTTPClient and
// LimiterStorage are optional.
type Dependencies struct {
	DB             *gorm.DB
	Config         utils.Config
	Logger         *zap.Logger
	HTTPClient     *http.Client
	LimiterStorage fiber.Storage
}

func NewApp(deps Dependencies) (*fiber.App, error) {
	utils.InitValidator()
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:           "coffee-shop",
		EnablePrintRoutes: true,
		ErrorHandler:      presenters.ErrorHandler(logger),
	})
	middlewares := middleware.NewMiddleware(cfg.CORSAllowOrigins, logger)
	validator := utils.Validate

	// setting up logging and limiter
	accessLog, err := openAccessLog(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	app.Use(middlewares.RecoverMiddleware())
	app.Use(middlewares.RequestIDMiddleware())
	app.Use(middlewares.LoggerMiddleware(accessLog))

	limiterStorage := deps.LimiterStorage
	if limiterStorage == nil && cfg.RedisAddr != "" {
		limiterStorage = storage.NewRedisStorage(storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword), storage.DefaultPrefix+"limiter:")
		logger.Info("rate limiter using redis", zap.String("addr", cfg.RedisAddr))
	}
	limitMax, limitExpiration := cfg.RateLimit()
	app.Use(middlewares.LimiterMiddleware(limitMax, limitExpiration, limiterStorage))

	app.Hooks().OnShutdown(func() error {
		if closer, ok := accessLog.(io.Closer); ok {
			closer.Close()
		}
		if limiterStorage != nil {
			return limiterStorage.Close()
		}
		return nil
	})

	// Repository
	drinkRepository := drink.NewDrinkRepository(deps.DB)

	// Service
	jwtService := jwt.NewJWTService(jwt.Config{
		Domain:     cfg.Auth0Domain,
		Audience:   cfg.APIAudience,
		Algorithms: cfg.AllowedAlgorithms(),
		CacheTTL:   cfg.KeySetTTL(),
		HTTPClient: deps.HTTPClient,
	}, logger)
	drinkService := drink.NewDrinkService(drinkRepository, logger)

	// Handler
	drinkHandler := handlers.NewDrinkHandler(drinkService, validator, logger)

	// routes
	routesConfig := routes.Config{
		App:          app,
		DrinkHandler: drinkHandler,
		Middleware:   middlewares,
		JWTService:   jwtService,
	}
	routesConfig.Setup()
	return app, nil
}

func openAccessLog(path string) (io.Writer, error) {
	if path == "" {
		return io.Discard, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	return file, nil
}
