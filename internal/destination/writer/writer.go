// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mia-platform/asynciot/internal/destination"
)

var _ destination.Sender = &writerDestination{}

type writerDestination struct {
	writer io.Writer

	lock sync.Mutex
}

func NewDestination(w io.Writer) destination.Sender {
	return &writerDestination{
		writer: w,
	}
}

func (d *writerDestination) SendData(_ context.Context, data *destination.Data) error {
	builder := new(strings.Builder)

	builder.WriteString("Send data:\n")
	builder.WriteString("\tID: " + data.ID + "\n")
	builder.WriteString("\tDevice: " + data.Device + "\n")
	builder.WriteString("\tKind: " + data.Kind + "\n")
	builder.WriteString("\tTime: " + data.Time.UTC().Format(time.RFC3339Nano) + "\n")
	builder.WriteString("\tPayload: ")

	encoder := json.NewEncoder(builder)
	encoder.SetIndent("\t", "\t")
	if err := encoder.Encode(data.Payload); err != nil {
		return err
	}
	builder.WriteString("\n")

	d.lock.Lock()
	defer d.lock.Unlock()
	fmt.Fprint(d.writer, builder.String())
	return nil
}
