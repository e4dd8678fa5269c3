// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind the interface used by every asynciot component.
// Loggers travel inside context.Context and a fiber middleware attaches one to each request.
package logger
