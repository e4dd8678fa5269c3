// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mia-platform/asynciot/internal/logger"
	"github.com/mia-platform/asynciot/internal/results"
)

var (
	ErrPathNotRecognised = errors.New("path not recognised")
)

// Visit records a request served by the host.
type Visit struct {
	Path   string `json:"path"`
	Remote string `json:"remote"`
}

// AppState keeps the usage statistics of the host. Only registered paths are counted.
type AppState struct {
	startTime time.Time
	maxVisits int
	now       func() time.Time

	lock         sync.RWMutex
	visitCounts  map[string]uint64
	latestVisits []Visit
}

// NewAppState returns an AppState remembering the last latestVisits visits.
func NewAppState(latestVisits int) *AppState {
	return newAppState(latestVisits, time.Now)
}

func newAppState(latestVisits int, now func() time.Time) *AppState {
	return &AppState{
		startTime:    now(),
		maxVisits:    max(latestVisits, 0),
		now:          now,
		visitCounts:  make(map[string]uint64),
		latestVisits: make([]Visit, 0, max(latestVisits, 0)),
	}
}

// RegisterPath starts counting visits to path. Registering a path twice keeps its count.
func (s *AppState) RegisterPath(path string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.visitCounts[path]; !ok {
		s.visitCounts[path] = 0
	}
}

// LogVisit counts a visit from remote to path; remote is empty when unknown.
func (s *AppState) LogVisit(ctx context.Context, path, remote string) error {
	log := logger.FromContext(ctx)
	if remote == "" {
		log.Info(fmt.Sprintf("Rendering '%s' for unknown remote.", path))
	} else {
		log.Info(fmt.Sprintf("Rendering '%s' for '%s'.", path, remote))
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	count, ok := s.visitCounts[path]
	if !ok {
		return fmt.Errorf("%w: Attempted to log to a path at %q, but it was not initialised in this `AppState`.", ErrPathNotRecognised, path)
	}
	s.visitCounts[path] = count + 1

	if s.maxVisits == 0 {
		return nil
	}
	if len(s.latestVisits) == s.maxVisits {
		s.latestVisits = append(s.latestVisits[:0], s.latestVisits[1:]...)
	}
	s.latestVisits = append(s.latestVisits, Visit{Path: path, Remote: remote})
	return nil
}

// VisitCount returns the visits counted for path.
func (s *AppState) VisitCount(path string) (uint64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	count, ok := s.visitCounts[path]
	return count, ok
}

// LatestVisits returns the remembered visits, oldest first.
func (s *AppState) LatestVisits() []Visit {
	s.lock.RLock()
	defer s.lock.RUnlock()
	visits := make([]Visit, len(s.latestVisits))
	copy(visits, s.latestVisits)
	return visits
}

// Uptime returns the time elapsed since the state was created.
func (s *AppState) Uptime() time.Duration {
	return s.now().Sub(s.startTime)
}

func (s *AppState) MarshalJSON() ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return json.Marshal(struct {
		StartTime    string            `json:"start_time"`
		Uptime       float64           `json:"uptime"`
		VisitCounts  map[string]uint64 `json:"visit_counts"`
		LatestVisits []Visit           `json:"latest_visits"`
	}{
		StartTime:    s.startTime.UTC().Format(results.TimestampLayout),
		Uptime:       s.Uptime().Seconds(),
		VisitCounts:  s.visitCounts,
		LatestVisits: s.latestVisits,
	})
}
