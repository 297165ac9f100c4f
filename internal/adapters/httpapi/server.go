// Package httpapi serves the triage REST API.
package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/metrics"
	"go.uber.org/zap"
)

// Settings carries the HTTP server configuration plus the identity
// strings served on the index and health endpoints.
type Settings struct {
	ListenAddress  string
	AllowedOrigins []string
	MaxBodyBytes   int
	Debug          bool
	AppName        string
	AppVersion     string
	AppDescription string
}

// Server is the fiber frontend for the triage service. The store may be
// nil when persistence is disabled; the listing routes are then not
// mounted. Metrics may be nil when instrumentation is disabled.
type Server struct {
	app       *fiber.App
	service   *core.TriageService
	store     core.EmailStore
	extractor core.AttachmentExtractor
	settings  Settings
	logger    *zap.Logger
}

// NewServer creates the fiber app with its middleware stack and routes
func NewServer(
	service *core.TriageService,
	store core.EmailStore,
	extractor core.AttachmentExtractor,
	m *metrics.Metrics,
	settings Settings,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               settings.AppName,
		BodyLimit:             settings.MaxBodyBytes,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		app:       app,
		service:   service,
		store:     store,
		extractor: extractor,
		settings:  settings,
		logger:    logger,
	}

	app.Use(fiberrecover.New())
	app.Use(requestLogger(logger))
	if m != nil {
		app.Use(m.Middleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(settings.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)
	app.Get("/docs", s.handleDocs)
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// The analysis handler answers on both spellings the clients use
	app.Post("/analyze", s.handleAnalyze)
	app.Post("/analyzis", s.handleAnalyze)

	app.Post("/model/reload", s.handleModelReload)

	if store != nil {
		app.Get("/list", s.handleList)
		app.Post("/delete/:id", s.handleDelete)
	}

	return s
}

// Start begins serving in a background goroutine
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("address", s.settings.ListenAddress))

	go func() {
		if err := s.app.Listen(s.settings.ListenAddress); err != nil {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler renders every routing and handler error as JSON. The
// router reports unknown paths as 404 and method mismatches as 405;
// fasthttp reports oversized bodies as 413.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error":   "Endpoint não encontrado",
					"message": "Verifique a URL e tente novamente",
				})
			case fiber.StatusMethodNotAllowed:
				return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
					"error":   "Método não permitido",
					"message": "Método " + c.Method() + " não é permitido para este endpoint",
				})
			case fiber.StatusRequestEntityTooLarge:
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error":   "Payload muito grande",
					"message": "O conteúdo enviado excede o limite permitido",
				})
			default:
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"error": fiberErr.Message,
				})
			}
		}

		logger.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Erro interno do servidor",
			"message": "Tente novamente em alguns momentos",
		})
	}
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request completed", fields...)
		}

		return err
	}
}
