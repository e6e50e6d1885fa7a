// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nity4jain/skillbridge-mvp/internal/analysis"
	"github.com/nity4jain/skillbridge-mvp/internal/logger"
	"github.com/nity4jain/skillbridge-mvp/internal/matching"
)

const (
	defaultAddr      = ":8000"
	defaultBodyLimit = 15 << 20
)

// Config is the server section of the application config.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	BodyLimit       int           `mapstructure:"body-limit"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type Server struct {
	app    *fiber.App
	cfg    Config
	logger *zap.Logger
}

// New builds the fiber app with all routes registered.
func New(cfg Config, svc *analysis.Service, extractor analysis.SkillExtractor, engine *matching.Engine, l *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	l = logger.OrNop(l)

	app := fiber.New(fiber.Config{
		AppName:               "skillbridge",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		DisableStartupMessage: true,
	})
	app.Use(requestLogger(l))

	h := &handlers{analysis: svc, extractor: extractor, engine: engine, logger: l}
	register(app, h)

	return &Server{app: app, cfg: cfg, logger: l}
}

// App returns the underlying fiber app, mostly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Run listens until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func requestLogger(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)

		err := c.Next()

		l.Debug("http request",
			zap.String(logger.FieldRequestID, id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(started)),
		)
		return err
	}
}
