// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/asynciot/internal/exitcode"
	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/results"
	"github.com/mia-platform/asynciot/internal/source"
	"github.com/mia-platform/asynciot/internal/source/shellyv1"
)

const (
	InfoPath      = "/info"
	TerminatePath = "/terminate"

	relaySegment = "/relay"
	lightSegment = "/light"

	infoKey = "info"
	hostKey = "host"
)

var (
	ErrRemoteTermination = errors.New("A remote host requested a termination with error")
)

// UnknownKeyError is reported when a request asks for a key the device does not expose.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("Requested key of %s not recognised.", e.Key)
}

func (h *Host) registerRoutes(ctx context.Context) error {
	h.server.App().Use(h.contextMiddleware)

	h.addRoute(http.MethodGet, InfoPath, InfoPath, h.infoHandler)
	h.addRoute(http.MethodGet, TerminatePath, TerminatePath, h.terminateHandler)

	for _, device := range h.devices {
		h.addRoute(http.MethodGet, device.Path+"/:subset?", device.Path, h.stateHandler(device))

		if shelly, ok := device.Shelly(); ok {
			if shelly.Model().HasRelay() {
				path := device.Path + relaySegment
				h.addRoute(http.MethodGet, path+"/:id", path, h.relayHandler(device, shelly))
			}
			if shelly.Model().HasLight() {
				path := device.Path + lightSegment
				h.addRoute(http.MethodGet, path+"/:id", path, h.lightHandler(device, shelly))
			}
		}

		webhookSource, ok := device.Cache.Source().(source.WebhookSource)
		if !ok {
			continue
		}
		webhook, err := webhookSource.GetWebhook(ctx)
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrDeviceSetup, device.Name, err)
		}
		webhook.Handler = refreshingWebhook(device, webhook.Handler)
		h.server.AddWebhook(webhook)
		if webhook.Method != http.MethodPost {
			webhook.Method = http.MethodPost
			h.server.AddWebhook(webhook)
		}
		h.log.Debug("webhook registered", "device", device.Name, "path", webhook.Path)
	}
	return nil
}

// addRoute registers handler on route, counting its visits under path.
func (h *Host) addRoute(method, route, path string, handler fiber.Handler) {
	h.state.RegisterPath(path)
	h.server.AddRoute(method, route, func(c *fiber.Ctx) error {
		if err := h.state.LogVisit(c.UserContext(), path, c.IP()); err != nil {
			h.log.Debug("visit not recorded", "error", err)
		}
		return handler(c)
	})
	h.log.Trace("route registered", "method", method, "route", route)
}

// contextMiddleware makes a logger available to sources called by the handlers,
// keeping the request logger when the server installed one.
func (h *Host) contextMiddleware(c *fiber.Ctx) error {
	ctx := c.UserContext()
	c.SetUserContext(logger.WithContext(ctx, logger.FromContextOr(ctx, h.log)))
	return c.Next()
}

func (h *Host) infoHandler(c *fiber.Ctx) error {
	return c.JSON(results.New().AddResult(infoKey, results.OkState(), h.state))
}

func (h *Host) terminateHandler(c *fiber.Ctx) error {
	if c.Request().URI().QueryArgs().Has("error") {
		err := fmt.Errorf("%w: %s", ErrRemoteTermination, c.Query("error"))
		h.token.NotifyFailure(exitcode.RequestedTermination, err)
	} else {
		warning := "Termination request from unknown remote, app completed."
		if remote := c.IP(); remote != "" {
			warning = fmt.Sprintf("Termination request from '%s', app completed.", remote)
		}
		h.token.NotifyWithWarnings(warning)
	}

	return c.JSON(results.New().AddResult(hostKey, results.OkState(), fiber.Map{"termination": true}))
}

func (h *Host) stateHandler(device *Device) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keys := device.Cache.Source().AvailableKeys()
		if subset := c.Params("subset"); subset != "" {
			if !slices.Contains(keys, subset) {
				return c.JSON(results.New().WithEntries(results.EntryFromErr(subset, &UnknownKeyError{Key: subset})))
			}
			keys = []string{subset}
		}

		envelope, err := device.Cache.GetOrUpdate(c.UserContext(), keys...)
		if err != nil {
			h.log.Error("cannot read device state", "device", device.Name, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(results.FromErr(err, keys...))
		}
		return c.JSON(envelope)
	}
}

func (h *Host) relayHandler(device *Device, shelly *shellyv1.Device) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := channelID(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(results.FromErr(err, shellyv1.KeyRelay0))
		}
		key := "relay" + strconv.Itoa(id)

		query, err := shellyv1.ParseRelayQuery(requestQuery(c))
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(results.FromErr(err, key))
		}

		relay, err := shelly.SetRelay(c.UserContext(), id, query)
		return h.controlResponse(c, device, key, relay, err)
	}
}

func (h *Host) lightHandler(device *Device, shelly *shellyv1.Device) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := channelID(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(results.FromErr(err, shellyv1.KeyLight0))
		}
		key := "light" + strconv.Itoa(id)

		query, err := shellyv1.ParseLightQuery(requestQuery(c))
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(results.FromErr(err, key))
		}

		light, err := shelly.SetLight(c.UserContext(), id, query)
		return h.controlResponse(c, device, key, light, err)
	}
}

func (h *Host) controlResponse(c *fiber.Ctx, device *Device, key string, value any, err error) error {
	// the device state changed or is unknown, next reads go to the device
	device.Cache.Invalidate()

	if err != nil {
		h.log.Error("device control failed", "device", device.Name, "key", key, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(results.FromErr(err, key))
	}
	return c.JSON(results.New().AddResult(key, results.OkState(), value))
}

// refreshingWebhook reloads the device state after every action notified by the device.
func refreshingWebhook(device *Device, handler source.WebhookHandler) source.WebhookHandler {
	return func(ctx context.Context, headers http.Header, query url.Values, body []byte) error {
		if err := handler(ctx, headers, query, body); err != nil {
			return err
		}

		device.Cache.Invalidate()
		if err := device.Cache.Update(ctx); err != nil {
			logger.FromContext(ctx).Warn("cannot refresh device after webhook", "device", device.Name, "error", err)
			return err
		}
		return nil
	}
}

func channelID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: channel id must be a non negative integer", shellyv1.ErrInvalidQuery)
	}
	return id, nil
}

func requestQuery(c *fiber.Ctx) url.Values {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return values
}
