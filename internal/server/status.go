// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// StatusResponse is the body of the health and readiness probes.
type StatusResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func statusRoutes(app *fiber.App, serviceName, serviceVersion string) {
	response := StatusResponse{
		Status:  "OK",
		Name:    serviceName,
		Version: serviceVersion,
	}

	status := app.Group("/-")
	status.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(response)
	})
	status.Get("/ready", func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(response)
	})
}
