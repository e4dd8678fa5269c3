// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// severityKey marks records whose severity hclog cannot express natively.
	severityKey = "severity"
)

var (
	// nullLogger is a logger that discards all log messages.
	nullLogger = &instance{log: hclog.NewNullLogger(), level: new(atomic.Int32)}
)

//go:generate ${TOOLS_BIN}/stringer -type=Level
type Level int

const (
	CRITICAL Level = iota
	ERROR
	WARN
	INFO
	DEBUG
	TRACE
)

// LevelFromString parses a level name ignoring case; unknown names fall back to INFO.
func LevelFromString(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "CRITICAL", "FATAL":
		return CRITICAL
	default:
		return INFO
	}
}

func (l Level) valid() Level {
	if l < CRITICAL || l > TRACE {
		return INFO
	}
	return l
}

func (l Level) convertedLevel() hclog.Level {
	switch l {
	case TRACE:
		return hclog.Trace
	case DEBUG:
		return hclog.Debug
	case INFO:
		return hclog.Info
	case WARN:
		return hclog.Warn
	case ERROR, CRITICAL:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Logger describes the interface that must be implemented by all loggers
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger

	// SetLevel updates the logger level.
	SetLevel(level Level)

	// Trace emit a message and key/value pairs at the TRACE level.
	Trace(msg string, args ...interface{})

	// Debug emit a message and key/value pairs at the DEBUG level.
	Debug(msg string, args ...interface{})

	// Info emit a message and key/value pairs at the INFO level.
	Info(msg string, args ...interface{})

	// Warn emit a message and key/value pairs at the WARN level.
	Warn(msg string, args ...interface{})

	// Error emit a message and key/value pairs at the ERROR level.
	Error(msg string, args ...interface{})

	// Critical emit a message and key/value pairs at the CRITICAL level.
	Critical(msg string, args ...interface{})
}

// Make sure that intLogger is a Logger.
var _ Logger = &instance{}

// instance is a Logger implementation.
// hclog has no level above Error, so CRITICAL is tracked here and shared by named children.
type instance struct {
	log   hclog.Logger
	level *atomic.Int32
}

// NewLogger creates a new logger instance.
func NewLogger(writer io.Writer) Logger {
	level := new(atomic.Int32)
	level.Store(int32(INFO))
	return &instance{
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat: true,
			Output:     writer,
			TimeFn:     time.Now,
			Level:      INFO.convertedLevel(),
		}),
		level: level,
	}
}

func (i instance) WithName(name string) Logger {
	return &instance{
		log:   i.log.ResetNamed(name),
		level: i.level,
	}
}

func (i instance) SetLevel(level Level) {
	level = level.valid()
	i.level.Store(int32(level))
	i.log.SetLevel(level.convertedLevel())
}

func (i instance) Trace(msg string, args ...interface{}) {
	i.log.Trace(msg, args...)
}

func (i instance) Debug(msg string, args ...interface{}) {
	i.log.Debug(msg, args...)
}

func (i instance) Info(msg string, args ...interface{}) {
	i.log.Info(msg, args...)
}

func (i instance) Warn(msg string, args ...interface{}) {
	i.log.Warn(msg, args...)
}

func (i instance) Error(msg string, args ...interface{}) {
	if Level(i.level.Load()) == CRITICAL {
		return
	}
	i.log.Error(msg, args...)
}

func (i instance) Critical(msg string, args ...interface{}) {
	i.log.Error(msg, append([]interface{}{severityKey, CRITICAL.String()}, args...)...)
}
