// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"
	"errors"
	"sync"
)

var _ Sender = &multiSender{}
var _ Closable = &multiSender{}

type multiSender struct {
	senders []Sender
}

// NewMulti returns a Sender delivering every snapshot to all senders concurrently.
// A single sender is returned as is.
func NewMulti(senders ...Sender) Sender {
	if len(senders) == 1 {
		return senders[0]
	}
	return &multiSender{senders: senders}
}

// SendData sends data to every sender and joins their errors.
func (m *multiSender) SendData(ctx context.Context, data *Data) error {
	errorsList := make([]error, len(m.senders))

	var wg sync.WaitGroup
	for idx, sender := range m.senders {
		wg.Go(func() {
			errorsList[idx] = sender.SendData(ctx, data)
		})
	}
	wg.Wait()

	return errors.Join(errorsList...)
}

func (m *multiSender) Close(ctx context.Context) error {
	return CloseAll(ctx, m.senders...)
}
