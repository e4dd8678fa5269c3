// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package shellyv1

// DeviceInfo is returned by /shelly and needs no authentication.
type DeviceInfo struct {
	Type       string `json:"type"`
	MAC        string `json:"mac"`
	Auth       bool   `json:"auth"`
	FW         string `json:"fw"`
	LongID     int    `json:"longid"`
	NumOutputs int    `json:"num_outputs,omitempty"`
	NumMeters  int    `json:"num_meters,omitempty"`
}

// Relay is the state of a relay channel, returned by /relay/{id}.
type Relay struct {
	IsOn           bool     `json:"ison"`
	HasTimer       bool     `json:"has_timer"`
	TimerStarted   UnixTime `json:"timer_started"`
	TimerDuration  float64  `json:"timer_duration"`
	TimerRemaining float64  `json:"timer_remaining"`
	Overpower      *bool    `json:"overpower,omitempty"`
	Source         string   `json:"source"`
}

// Light is the state of a light channel, returned by /light/{id}.
type Light struct {
	IsOn           bool        `json:"ison"`
	Source         string      `json:"source"`
	HasTimer       bool        `json:"has_timer"`
	TimerStarted   UnixTime    `json:"timer_started"`
	TimerDuration  float64     `json:"timer_duration"`
	TimerRemaining float64     `json:"timer_remaining"`
	Mode           LightMode   `json:"mode"`
	Red            uint8       `json:"red"`
	Green          uint8       `json:"green"`
	Blue           uint8       `json:"blue"`
	White          uint8       `json:"white"`
	Gain           uint8       `json:"gain"`
	Temp           uint16      `json:"temp"`
	Brightness     uint8       `json:"brightness"`
	Effect         LightEffect `json:"effect"`
}

// Meter is a power meter reading, returned by /meter/{id}.
type Meter struct {
	Power     float64   `json:"power"`
	IsValid   bool      `json:"is_valid"`
	Overpower *float64  `json:"overpower,omitempty"`
	Timestamp UnixTime  `json:"timestamp"`
	Counters  []float64 `json:"counters"`
	Total     float64   `json:"total"`
}

// Settings is the subset of /settings reported by the host.
type Settings struct {
	Device   SettingsDevice `json:"device"`
	Name     string         `json:"name"`
	FW       string         `json:"fw"`
	AP       SettingsAP     `json:"wifi_ap"`
	STA      SettingsSTA    `json:"wifi_sta"`
	Cloud    SettingsCloud  `json:"cloud"`
	Login    SettingsLogin  `json:"login"`
	Timezone string         `json:"timezone,omitempty"`
}

type SettingsDevice struct {
	Type       string `json:"type"`
	MAC        string `json:"mac"`
	Hostname   string `json:"hostname"`
	NumOutputs int    `json:"num_outputs,omitempty"`
	NumMeters  int    `json:"num_meters,omitempty"`
}

type SettingsAP struct {
	Enabled bool   `json:"enabled"`
	SSID    string `json:"ssid"`
}

type SettingsSTA struct {
	Enabled bool   `json:"enabled"`
	SSID    string `json:"ssid"`
	IPv4    string `json:"ipv4_method"`
	IP      string `json:"ip"`
	Gateway string `json:"gw"`
	Mask    string `json:"mask"`
	DNS     string `json:"dns"`
}

type SettingsCloud struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

type SettingsLogin struct {
	Enabled     bool   `json:"enabled"`
	Unprotected bool   `json:"unprotected"`
	Username    string `json:"username"`
}
