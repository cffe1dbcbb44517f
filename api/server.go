package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8000"

// Config holds the settings for an API server.
type Config struct {
	// Addr is the listen address, defaulting to DefaultAddr.
	Addr string

	// APIKey is the bearer token required on the answer endpoint.
	APIKey string

	// Version is reported by the health endpoint.
	Version string
}

// Server is the HTTP front end: a bearer-guarded answer endpoint plus
// an open health check.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
}

// NewServer creates an API server routing answer requests to service.
func NewServer(cfg Config, service Service, logger *slog.Logger) (*Server, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024, // answer requests are small JSON bodies
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Get("/health", healthHandler(cfg.Version))

	v1 := app.Group("/api/v1")
	v1.Use(BearerAuth(cfg.APIKey))
	NewHandler(service, logger).RegisterRoutes(v1)

	return &Server{
		app:    app,
		addr:   cfg.Addr,
		logger: logger.With("component", "api"),
	}, nil
}

// App returns the underlying fiber application, used by tests to issue
// in-process requests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves requests until Shutdown is called or the listener
// fails.
func (s *Server) Listen() error {
	s.logger.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server, waiting for in-flight
// requests to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.app.ShutdownWithContext(ctx)
}

func healthHandler(version string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(HealthResponse{Status: "healthy", Version: version})
	}
}

// errorHandler renders every error escaping a handler as a JSON body
// with the matching status code.
func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return ctx.Status(code).JSON(fiber.Map{"message": err.Error()})
}
