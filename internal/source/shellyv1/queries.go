// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

import (
	"fmt"
	"net/url"
	"strconv"
)

// RelayQuery controls a relay channel. Unset fields are left untouched by the device.
type RelayQuery struct {
	Turn  *Turn
	Timer *uint64
}

// Values encodes the query parameters understood by the device.
func (q *RelayQuery) Values() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}
	if q.Turn != nil {
		values.Set("turn", string(*q.Turn))
	}
	if q.Timer != nil {
		values.Set("timer", strconv.FormatUint(*q.Timer, 10))
	}
	return values
}

// IsEmpty reports whether the query changes nothing.
func (q *RelayQuery) IsEmpty() bool {
	return len(q.Values()) == 0
}

// ParseRelayQuery reads a relay command from request parameters.
func ParseRelayQuery(values url.Values) (*RelayQuery, error) {
	query := new(RelayQuery)
	if value := values.Get("turn"); value != "" {
		turn, err := ParseTurn(value)
		if err != nil {
			return nil, err
		}
		query.Turn = &turn
	}

	timer, err := parseUint(values, "timer", 0, 0)
	if err != nil {
		return nil, err
	}
	query.Timer = timer
	return query, nil
}

// LightQuery controls a light channel. Unset fields are left untouched by the device.
type LightQuery struct {
	Mode       *LightMode
	Timer      *uint64
	Turn       *Turn
	Red        *uint8
	Green      *uint8
	Blue       *uint8
	White      *uint8
	Gain       *uint8
	Temp       *uint16
	Brightness *uint8
	Effect     *LightEffect
}

// Values encodes the query parameters understood by the device.
func (q *LightQuery) Values() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}
	if q.Mode != nil {
		values.Set("mode", string(*q.Mode))
	}
	if q.Timer != nil {
		values.Set("timer", strconv.FormatUint(*q.Timer, 10))
	}
	if q.Turn != nil {
		values.Set("turn", string(*q.Turn))
	}
	setUint8(values, "red", q.Red)
	setUint8(values, "green", q.Green)
	setUint8(values, "blue", q.Blue)
	setUint8(values, "white", q.White)
	setUint8(values, "gain", q.Gain)
	if q.Temp != nil {
		values.Set("temp", strconv.FormatUint(uint64(*q.Temp), 10))
	}
	setUint8(values, "brightness", q.Brightness)
	if q.Effect != nil {
		values.Set("effect", strconv.FormatUint(uint64(*q.Effect), 10))
	}
	return values
}

// IsEmpty reports whether the query changes nothing.
func (q *LightQuery) IsEmpty() bool {
	return len(q.Values()) == 0
}

// ParseLightQuery reads a light command from request parameters, checking the ranges
// accepted by the device.
func ParseLightQuery(values url.Values) (*LightQuery, error) {
	query := new(LightQuery)

	if value := values.Get("mode"); value != "" {
		mode, err := ParseLightMode(value)
		if err != nil {
			return nil, err
		}
		query.Mode = &mode
	}
	if value := values.Get("turn"); value != "" {
		turn, err := ParseTurn(value)
		if err != nil {
			return nil, err
		}
		query.Turn = &turn
	}
	if value := values.Get("effect"); value != "" {
		effect, err := ParseLightEffect(value)
		if err != nil {
			return nil, err
		}
		query.Effect = &effect
	}

	var err error
	if query.Timer, err = parseUint(values, "timer", 0, 0); err != nil {
		return nil, err
	}
	if query.Red, err = parseUint8(values, "red", 255); err != nil {
		return nil, err
	}
	if query.Green, err = parseUint8(values, "green", 255); err != nil {
		return nil, err
	}
	if query.Blue, err = parseUint8(values, "blue", 255); err != nil {
		return nil, err
	}
	if query.White, err = parseUint8(values, "white", 255); err != nil {
		return nil, err
	}
	if query.Gain, err = parseUint8(values, "gain", 100); err != nil {
		return nil, err
	}
	if query.Brightness, err = parseUint8(values, "brightness", 100); err != nil {
		return nil, err
	}

	temp, err := parseUint(values, "temp", 3000, 6500)
	if err != nil {
		return nil, err
	}
	if temp != nil {
		value := uint16(*temp)
		query.Temp = &value
	}

	return query, nil
}

func setUint8(values url.Values, key string, value *uint8) {
	if value != nil {
		values.Set(key, strconv.FormatUint(uint64(*value), 10))
	}
}

// parseUint reads an optional unsigned parameter; a zero upper bound means unbounded.
func parseUint(values url.Values, key string, lower, upper uint64) (*uint64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value < lower || (upper > 0 && value > upper) {
		if upper > 0 {
			return nil, fmt.Errorf("%w: %s must be between %d and %d, got %q", ErrInvalidQuery, key, lower, upper, raw)
		}
		return nil, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidQuery, key, raw)
	}
	return &value, nil
}

func parseUint8(values url.Values, key string, upper uint64) (*uint8, error) {
	value, err := parseUint(values, key, 0, upper)
	if err != nil || value == nil {
		return nil, err
	}
	converted := uint8(*value)
	return &converted, nil
}
