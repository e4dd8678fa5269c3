// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/asynciot/internal/info"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/source"
)

const (
	loggerName = "asynciot:server"
)

type Server interface {
	App() *fiber.App
	AddRoute(method string, path string, handler fiber.Handler)
	AddWebhook(webhook source.Webhook)
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	Config

	app *fiber.App
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer reads its configuration from the environment.
func NewServer(ctx context.Context) (Server, error) {
	cfg, err := LoadServerConfig()
	if err != nil {
		return nil, err
	}
	return NewServerWithConfig(ctx, cfg), nil
}

func NewServerWithConfig(ctx context.Context, cfg *Config) Server {
	app := fiber.New(fiber.Config{
		AppName:               info.AppName,
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true, // ensure that accessing request body returns a copy that is valid after the request lifecycle (accessing body and headers in goroutines in the request handlers)
	})
	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddlewareLogger(log, []string{"/-/"}))

	statusRoutes(app, info.AppName, info.Version)

	return &impServer{
		app:    app,
		Config: *cfg,
	}
}

func (s *impServer) App() *fiber.App {
	return s.app
}

func (s *impServer) AddRoute(method string, path string, handler fiber.Handler) {
	s.app.Add(method, path, handler)
}

func (s *impServer) AddWebhook(webhook source.Webhook) {
	s.app.Add(webhook.Method, webhook.Path, WebhookHandler(webhook.Handler))
}

// WebhookHandler adapts a source webhook handler to fiber: a nil error answers 204.
func WebhookHandler(handler source.WebhookHandler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		headers := http.Header{}
		for key, values := range ctx.GetReqHeaders() {
			for _, value := range values {
				headers.Add(key, value)
			}
		}

		query := url.Values{}
		for key, value := range ctx.Queries() {
			query.Set(key, value)
		}

		if err := handler(ctx.UserContext(), headers, query, ctx.Body()); err != nil {
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"statusCode": http.StatusInternalServerError,
				"error":      http.StatusText(http.StatusInternalServerError),
				"message":    "error processing webhook message",
			})
		}
		return ctx.SendStatus(http.StatusNoContent)
	}
}

func (s *impServer) Start() error {
	if err := s.app.Listen(s.ListenAddress()); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
