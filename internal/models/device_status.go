package models

import "time"

// DeviceStatus is the latest snapshot of the lifecycle controller.
type DeviceStatus struct {
	ID             int       `json:"id"`
	State          string    `json:"state"`                   // INIT | CREATE_MESSAGE | CONFIG_CHECK | TRANSMIT | IDLE | HALTED
	ConfigID       string    `json:"config_id"`               // uuid of the active document
	Period         int       `json:"period"`                  // seconds, -1 when off
	WindowEnd      string    `json:"window_end,omitempty"`    // HH:MM:SS
	RuntimeSeconds float64   `json:"runtime_seconds"`         // accumulated this cycle
	LastDecision   string    `json:"last_decision,omitempty"` // e.g. "sleep 5s"
	Connected      bool      `json:"connected"`
	UpdatedAt      time.Time `json:"updated_at"`
}
