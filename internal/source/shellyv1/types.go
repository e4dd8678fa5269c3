// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Turn is the command switching an output.
type Turn string

const (
	TurnOn     Turn = "on"
	TurnOff    Turn = "off"
	TurnToggle Turn = "toggle"
)

// ParseTurn validates a turn command.
func ParseTurn(value string) (Turn, error) {
	switch turn := Turn(value); turn {
	case TurnOn, TurnOff, TurnToggle:
		return turn, nil
	default:
		return "", fmt.Errorf("%w: turn must be one of on, off, toggle, got %q", ErrInvalidQuery, value)
	}
}

// LightMode is the working mode of a light channel.
type LightMode string

const (
	LightModeColor LightMode = "color"
	LightModeWhite LightMode = "white"
)

// ParseLightMode validates a light mode.
func ParseLightMode(value string) (LightMode, error) {
	switch mode := LightMode(value); mode {
	case LightModeColor, LightModeWhite:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: mode must be one of color, white, got %q", ErrInvalidQuery, value)
	}
}

// LightEffect is the effect applied to a light channel.
type LightEffect uint8

const (
	LightEffectOff LightEffect = iota
	LightEffectMeteorShower
	LightEffectGradualChange
	LightEffectFlash
	LightEffectBreath
	LightEffectOnOffGradual
	LightEffectRedGreenChange
)

// ParseLightEffect validates a light effect index.
func ParseLightEffect(value string) (LightEffect, error) {
	index, err := strconv.ParseUint(value, 10, 8)
	if err != nil || LightEffect(index) > LightEffectRedGreenChange {
		return 0, fmt.Errorf("%w: effect must be between 0 and 6, got %q", ErrInvalidQuery, value)
	}
	return LightEffect(index), nil
}

// UnixTime is a point in time encoded as unix seconds, 0 meaning unset.
type UnixTime struct {
	time.Time
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	var seconds json.Number
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}

	value, err := seconds.Int64()
	if err != nil {
		floatValue, floatErr := seconds.Float64()
		if floatErr != nil {
			return err
		}
		value = int64(floatValue)
	}

	if value == 0 {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.Unix(value, 0).UTC()
	return nil
}
