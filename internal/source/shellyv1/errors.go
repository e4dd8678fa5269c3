// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery     = errors.New("invalid query")
	ErrInvalidAddress   = errors.New("invalid device address")
	ErrUnauthorized     = errors.New("invalid credentials or insufficient permissions")
	ErrNotFound         = errors.New("endpoint not available on the device")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrUnsupported      = errors.New("operation not supported by the device model")
	ErrUnknownModel     = errors.New("unknown device model")
)

// DeviceError is returned for every failed exchange with a device.
type DeviceError struct {
	Address    string
	StatusCode int

	err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("shelly %s: %s", e.Address, e.err)
}

func (e *DeviceError) Unwrap() error {
	return e.err
}

func (e *DeviceError) Is(target error) bool {
	de, ok := target.(*DeviceError)
	if !ok {
		return false
	}

	return e.Address == de.Address && e.err.Error() == de.err.Error()
}

func (c *Client) handleError(statusCode int, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	return &DeviceError{
		Address:    c.baseURL.Host,
		StatusCode: statusCode,
		err:        err,
	}
}
