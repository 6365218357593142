// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/fan-tach/internal/tach"
)

// Topic is the MQTT topic for per-window fan speed readings.
const Topic = "fan/tach/rpm"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fan/tach/system"

// Publisher publishes readings to MQTT.
type Publisher interface {
	// Publish sends the readings of one completed sample window.
	// Returns error if publishing fails (should not crash the process).
	Publish(w Window) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Window is one completed sample window.
type Window struct {
	Timestamp  time.Time
	IntervalMs uint32
	Readings   []tach.Reading
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Fans FansPayload `json:"fans"`
}

// FansPayload contains the readings of one window. Disabled channels are
// omitted.
type FansPayload struct {
	Timestamp  string            `json:"timestamp"`
	IntervalMs uint32            `json:"interval_ms"`
	RPM        map[string]uint32 `json:"rpm"`
}

// FormatPayload creates the JSON payload for a sample window.
func FormatPayload(w Window) ([]byte, error) {
	rpm := make(map[string]uint32, len(w.Readings))
	for _, r := range w.Readings {
		if r.Enabled {
			rpm[r.Name] = r.RPM
		}
	}
	payload := Payload{
		Fans: FansPayload{
			Timestamp:  w.Timestamp.UTC().Format(time.RFC3339),
			IntervalMs: w.IntervalMs,
			RPM:        rpm,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
