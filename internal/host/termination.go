// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package host

import (
	"context"
	"sync"

	"github.com/mia-platform/asynciot/internal/results"
)

// TerminationToken carries the outcome of a termination requested while the host runs.
// Only the first notification is kept.
type TerminationToken struct {
	once   sync.Once
	done   chan struct{}
	result results.Extended[struct{}]
}

func NewTerminationToken() *TerminationToken {
	return &TerminationToken{done: make(chan struct{})}
}

// NotifyWithWarnings requests a successful termination reporting warnings.
func (t *TerminationToken) NotifyWithWarnings(warnings ...string) bool {
	return t.notify(results.Ok(struct{}{}).WithWarnings(warnings...))
}

// NotifyFailure requests a termination failing with err and exit code code.
func (t *TerminationToken) NotifyFailure(code int, err error) bool {
	return t.notify(results.Fail[struct{}](code, err))
}

func (t *TerminationToken) notify(result results.Extended[struct{}]) bool {
	notified := false
	t.once.Do(func() {
		t.result = result
		notified = true
		close(t.done)
	})
	return notified
}

// Done is closed once a termination has been requested.
func (t *TerminationToken) Done() <-chan struct{} {
	return t.done
}

// Result returns the requested outcome; false when no termination has been requested.
func (t *TerminationToken) Result() (results.Extended[struct{}], bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return results.Extended[struct{}]{}, false
	}
}

// Wait blocks until a termination is requested or ctx is done.
func (t *TerminationToken) Wait(ctx context.Context) (results.Extended[struct{}], error) {
	select {
	case <-ctx.Done():
		return results.Extended[struct{}]{}, ctx.Err()
	case <-t.done:
		return t.result, nil
	}
}
