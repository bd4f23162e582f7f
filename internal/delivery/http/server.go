package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/config"
	"github.com/nearby-places/internal/delivery/http/handler"
	"github.com/nearby-places/internal/delivery/http/middleware"
	"github.com/nearby-places/internal/pkg/errors"
	"github.com/nearby-places/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	sessionHandler *handler.SessionHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	sessionHandler *handler.SessionHandler,
) *Server {
	// Ожидание позиции и поиск с повторами укладываются в WriteTimeout
	app := fiber.New(fiber.Config{
		AppName:      "Nearby Places",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		sessionHandler: sessionHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSAllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Session routes
	sessions := api.Group("/sessions")
	sessions.Post("/", s.sessionHandler.CreateSession)
	sessions.Get("/:id", s.sessionHandler.GetSession)
	sessions.Delete("/:id", s.sessionHandler.DeleteSession)
	sessions.Post("/:id/device", s.sessionHandler.ReportDevice)
	sessions.Post("/:id/location/refresh", s.sessionHandler.RefreshLocation)
	sessions.Post("/:id/search", s.sessionHandler.SearchPlaces)

	// Place routes
	sessions.Get("/:id/places/:place_id", s.sessionHandler.SelectPlace)
	sessions.Get("/:id/places/:place_id/details", s.sessionHandler.GetPlaceDetails)
}

// App возвращает fiber приложение
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		appErr := errors.ErrInternalServer
		switch {
		case code == fiber.StatusNotFound:
			appErr = errors.New("NOT_FOUND", "Route not found", code)
		case code < fiber.StatusInternalServerError:
			appErr = errors.New("BAD_REQUEST", err.Error(), code)
		}
		return c.Status(code).JSON(utils.ErrorResponse{Error: appErr})
	}
}
