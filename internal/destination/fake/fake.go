// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/mia-platform/asynciot/internal/destination"
)

var _ destination.Sender = &FakeDestination{}
var _ destination.Closable = &FakeDestination{}

type FakeDestination struct {
	tb testing.TB

	lock     sync.Mutex
	sentData []*destination.Data
	err      error
	closed   bool
	received chan struct{}
}

func NewFakeDestination(tb testing.TB) *FakeDestination {
	tb.Helper()
	return &FakeDestination{
		tb:       tb,
		received: make(chan struct{}, 100),
	}
}

func (f *FakeDestination) SendData(_ context.Context, data *destination.Data) error {
	f.tb.Helper()
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sentData = append(f.sentData, data)
	select {
	case f.received <- struct{}{}:
	default:
	}
	return nil
}

func (f *FakeDestination) Close(context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	return nil
}

// SetError makes every following send fail with err; nil restores normal sends.
func (f *FakeDestination) SetError(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.err = err
}

// SentData returns a copy of the data received so far.
func (f *FakeDestination) SentData() []*destination.Data {
	f.lock.Lock()
	defer f.lock.Unlock()
	sent := make([]*destination.Data, len(f.sentData))
	copy(sent, f.sentData)
	return sent
}

// Received is signaled after every successful send.
func (f *FakeDestination) Received() <-chan struct{} {
	return f.received
}

func (f *FakeDestination) Closed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}
