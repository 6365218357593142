// Package status provides a thread-safe status tracker for the fan-tach daemon.
// It is read by HTTP handlers and by the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/fan-tach/internal/tach"
)

// NetworkInfo contains network state as written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Mode        string
	WindowMs    int64
	PollMs      int64 // 0 in interrupt mode
	IdleMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	WSBroker    string // Websocket broker URL for the live page (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Fans          []tach.Reading
	IntervalMs    uint32
	Windows       uint64
	LastWindow    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Process       *ProcessInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether at least one sample window has completed.
func (s Snapshot) Ready() bool {
	return s.Windows > 0
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// fans lists the configured channels before any window completes.
func NewTracker(startTime time.Time, cfg Config, fans []tach.Reading) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Fans:      append([]tach.Reading(nil), fans...),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records a completed sample window.
func (t *Tracker) Update(readings []tach.Reading, intervalMs uint32, at time.Time) {
	fans := append([]tach.Reading(nil), readings...)
	t.mu.Lock()
	t.snap.Fans = fans
	t.snap.IntervalMs = intervalMs
	t.snap.Windows++
	t.snap.LastWindow = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// SetProcess sets the daemon's resource usage.
func (t *Tracker) SetProcess(info *ProcessInfo) {
	t.mu.Lock()
	t.snap.Process = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
