// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/asynciot/internal/server"
	"github.com/mia-platform/asynciot/internal/source"
)

var _ server.Server = &Server{}

type Route struct {
	Method string
	Path   string
}

// Server records the registered routes on an in-memory fiber application and never
// binds a socket: requests are served through App().Test.
type Server struct {
	tb  testing.TB
	app *fiber.App

	lock             sync.Mutex
	registeredRoutes []Route

	startedChan chan struct{}
	closedChan  chan struct{}
	startOnce   sync.Once
	closeOnce   sync.Once
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		app:         fiber.New(fiber.Config{DisableStartupMessage: true}),
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) AddRoute(method string, path string, handler fiber.Handler) {
	s.tb.Helper()
	s.register(method, path)
	s.app.Add(method, path, handler)
}

func (s *Server) AddWebhook(webhook source.Webhook) {
	s.tb.Helper()
	s.register(webhook.Method, webhook.Path)
	s.app.Add(webhook.Method, webhook.Path, server.WebhookHandler(webhook.Handler))
}

func (s *Server) register(method, path string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.registeredRoutes = append(s.registeredRoutes, Route{Method: method, Path: path})
}

// RegisteredRoutes returns a copy of the routes added so far.
func (s *Server) RegisteredRoutes() []Route {
	s.lock.Lock()
	defer s.lock.Unlock()
	routes := make([]Route, len(s.registeredRoutes))
	copy(routes, s.registeredRoutes)
	return routes
}

// Start blocks until Stop is called.
func (s *Server) Start() error {
	s.startOnce.Do(func() { close(s.startedChan) })
	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.closeOnce.Do(func() { close(s.closedChan) })
	return nil
}

func (s *Server) StartAsync(_ context.Context) {
	go func() {
		_ = s.Start()
	}()
}

func (s *Server) StartedServer() <-chan struct{} {
	return s.startedChan
}

func (s *Server) StoppedServer() <-chan struct{} {
	return s.closedChan
}
