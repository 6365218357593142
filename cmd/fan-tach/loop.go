package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/fan-tach/internal/mqtt"
	"github.com/sweeney/fan-tach/internal/status"
	"github.com/sweeney/fan-tach/internal/tach"
)

// tickers drives the host loop. A nil channel disables that case.
type tickers struct {
	Idle      <-chan time.Time // scheduler check
	Poll      <-chan time.Time // level sampling, polled mode only
	Heartbeat <-chan time.Time
}

type loop struct {
	tach       *tach.Tach
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	report     tach.Sink // optional
	envFile    string
	now        func() time.Time
}

func (l *loop) run(tk tickers, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if l.tracker != nil {
				l.refreshConnection()
				event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tk.Poll:
			if err := l.tach.PollEdges(); err != nil {
				log.Printf("gpio read error: %v", err)
			}

		case <-tk.Idle:
			if !l.tach.UpdateRpm() {
				continue
			}
			l.windowDone()

		case <-tk.Heartbeat:
			l.heartbeat()
		}
	}
}

// windowDone hands a completed window to every consumer.
func (l *loop) windowDone() {
	t := l.now()
	readings := l.tach.Readings()
	interval := l.tach.Interval()

	if l.report != nil {
		l.tach.PrintReport(l.report)
	}
	if l.tracker != nil {
		l.tracker.Update(readings, interval, t)
		l.refreshConnection()
	}
	w := mqtt.Window{Timestamp: t, IntervalMs: interval, Readings: readings}
	if err := l.publisher.Publish(w); err != nil {
		// Don't crash on publish failure
		log.Printf("publish error: %v", err)
	}
}

func (l *loop) heartbeat() {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "HEARTBEAT",
	}
	if l.tracker != nil {
		l.refreshConnection()
		if net := readNetworkInfo(l.envFile); net != nil {
			l.tracker.SetNetwork(net)
		}
		refreshProcess(l.tracker)
		snap := l.tracker.Snapshot()
		log.Printf("heartbeat: uptime=%v windows=%d interval=%dms", snap.Uptime(), snap.Windows, snap.IntervalMs)
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *loop) refreshConnection() {
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func refreshProcess(tracker *status.Tracker) {
	info, err := status.ReadProcessInfo()
	if err != nil {
		log.Printf("process info: %v", err)
		return
	}
	tracker.SetProcess(info)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// readNetworkInfo reads the pi-helper env file, falling back to the process
// environment when the file is missing. Returns nil if no status is known.
func readNetworkInfo(path string) *status.NetworkInfo {
	lookup := os.Getenv
	if path != "" {
		if vars, err := godotenv.Read(path); err == nil {
			lookup = func(k string) string {
				if v, ok := vars[k]; ok {
					return v
				}
				return os.Getenv(k)
			}
		}
	}

	s := lookup(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       lookup(envNetworkType),
		IP:         lookup(envNetworkIP),
		Status:     s,
		Gateway:    lookup(envNetworkGateway),
		WifiStatus: lookup(envNetworkWifiStatus),
		SSID:       lookup(envNetworkWifiSSID),
	}
}
