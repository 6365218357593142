// Command fan-tach measures fan speed from tachometer pulses on GPIO inputs
// and publishes per-window RPM readings to MQTT.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sweeney/fan-tach/internal/clock"
	"github.com/sweeney/fan-tach/internal/gpio"
	"github.com/sweeney/fan-tach/internal/irq"
	"github.com/sweeney/fan-tach/internal/mqtt"
	"github.com/sweeney/fan-tach/internal/status"
	"github.com/sweeney/fan-tach/internal/tach"
	"github.com/sweeney/fan-tach/internal/web"
)

type options struct {
	channels  []string
	mode      string
	window    time.Duration
	poll      time.Duration
	idle      time.Duration
	chip      string
	irqMap    string
	broker    string
	clientID  string
	httpAddr  string
	wsBroker  string
	heartbeat time.Duration
	envFile   string
	report    bool
	printRPM  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "fan-tach",
		Short: "Measure fan speed from tachometer pulses and publish it to MQTT.",
		Long: `fan-tach counts falling edges from fan tachometer outputs, converts ` +
			`them to RPM once per sample window and publishes each window to MQTT. ` +
			`A status page is served over HTTP.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(o); err != nil {
				log.Printf("fatal: %v", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&o.channels, "channel", nil,
		`Fan channel as name:pin:ppr[:pullup][:disabled] (repeatable; default two fans on BCM 23 and 24)`)
	f.StringVar(&o.mode, "mode", "interrupt", "Pulse counting mode: interrupt or polled")
	f.DurationVar(&o.window, "window", time.Duration(tach.DefaultMinWindowMillis)*time.Millisecond, "Minimum sample window")
	f.DurationVar(&o.poll, "poll", time.Millisecond, "Level sampling interval in polled mode")
	f.DurationVar(&o.idle, "idle", 50*time.Millisecond, "Scheduler check interval")
	f.StringVar(&o.chip, "chip", "gpiochip0", "GPIO character device")
	f.StringVar(&o.irqMap, "irq-map", "linux", "Pin to interrupt table: linux or atmega2560")
	f.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	f.StringVar(&o.clientID, "client-id", "", "MQTT client ID (empty generates fan-tach-<xid>)")
	f.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	f.StringVar(&o.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for the live page ("=broker" derives from --broker, "off" disables)`)
	f.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.StringVar(&o.envFile, "env-file", "/run/pi-helper.env", "pi-helper network env file")
	f.BoolVar(&o.report, "report", false, "Print a report line to stdout after every window")
	f.BoolVar(&o.printRPM, "print-rpm", false, "Measure one window, print it and exit")
	return cmd
}

// buildConfig turns the CLI options into a tach configuration.
func buildConfig(o *options) (tach.Config, error) {
	mode, err := tach.ParseMode(o.mode)
	if err != nil {
		return tach.Config{}, err
	}
	if o.window <= 0 || o.window.Milliseconds() > int64(^uint32(0)) {
		return tach.Config{}, fmt.Errorf("%w: window %v out of range", tach.ErrInvalidConfig, o.window)
	}

	specs := o.channels
	if len(specs) == 0 {
		specs = []string{
			fmt.Sprintf("fan0:%d:2:pullup", gpio.DefaultPinFan0),
			fmt.Sprintf("fan1:%d:2:pullup", gpio.DefaultPinFan1),
		}
	}
	cfg := tach.Config{
		MinWindowMillis: uint32(o.window.Milliseconds()),
		Mode:            mode,
	}
	for _, s := range specs {
		ch, err := tach.ParseChannel(s)
		if err != nil {
			return tach.Config{}, err
		}
		cfg.Channels = append(cfg.Channels, ch)
	}
	return cfg, cfg.Validate()
}

// clientID returns id, or a fresh fan-tach-<xid>. The broker drops an
// existing session when a second client connects with the same ID.
func clientID(id string) string {
	if id != "" {
		return id
	}
	return "fan-tach-" + xid.New().String()
}

func selectIRQMap(name string, pins *gpio.RealPins) (gpio.InterruptMap, error) {
	switch name {
	case "linux":
		return pins.InterruptMap(), nil
	case "atmega2560":
		return gpio.ATmega2560, nil
	default:
		return nil, fmt.Errorf("unknown irq map %q", name)
	}
}

func run(o *options) error {
	cfg, err := buildConfig(o)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Edge handlers and the scheduler's critical section share this mask.
	mask := &irq.Mask{}
	pins, err := gpio.NewRealPins(o.chip, mask)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pins.Close()

	irqs, err := selectIRQMap(o.irqMap, pins)
	if err != nil {
		return err
	}

	t, err := tach.New(cfg, pins, clock.NewMonotonic(), mask, irqs)
	if err != nil {
		return fmt.Errorf("init tach: %w", err)
	}
	if err := t.Init(); err != nil {
		pins.Close()
		log.Fatalf("init tach: %v", err)
	}

	var pollC <-chan time.Time
	if t.Mode() == tach.ModePolled {
		pollTicker := time.NewTicker(o.poll)
		defer pollTicker.Stop()
		pollC = pollTicker.C
	}
	idleTicker := time.NewTicker(o.idle)
	defer idleTicker.Stop()

	if o.printRPM {
		return measureOnce(t, tach.NewTextSink(os.Stdout), idleTicker.C, pollC)
	}

	publisher, err := mqtt.NewRealPublisher(o.broker, clientID(o.clientID))
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	statusCfg := status.Config{
		Mode:        t.Mode().String(),
		WindowMs:    o.window.Milliseconds(),
		IdleMs:      o.idle.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPPort:    o.httpAddr,
		WSBroker:    resolveWSBroker(o.wsBroker, o.broker),
	}
	if t.Mode() == tach.ModePolled {
		statusCfg.PollMs = o.poll.Milliseconds()
	}
	tracker := status.NewTracker(time.Now(), statusCfg, t.Readings())
	tracker.SetMQTTConnected(publisher.IsConnected())
	if net := readNetworkInfo(o.envFile); net != nil {
		tracker.SetNetwork(net)
	}
	refreshProcess(tracker)

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	var hbC <-chan time.Time
	if o.heartbeat > 0 {
		hb := time.NewTicker(o.heartbeat)
		defer hb.Stop()
		hbC = hb.C
	}

	log.Printf("started: mode=%s window=%v channels=%d broker=%s heartbeat=%v",
		t.Mode(), o.window, t.Channels(), o.broker, o.heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		tach:       t,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		envFile:    o.envFile,
		now:        time.Now,
	}
	if o.report {
		l.report = tach.NewTextSink(os.Stdout)
	}
	return l.run(tickers{Idle: idleTicker.C, Poll: pollC, Heartbeat: hbC}, sigCh)
}

// measureOnce counts edges until one full window completes and writes its
// report line to sink.
func measureOnce(t *tach.Tach, sink tach.Sink, idle, poll <-chan time.Time) error {
	for {
		select {
		case <-poll:
			if err := t.PollEdges(); err != nil {
				log.Printf("gpio read error: %v", err)
			}
		case <-idle:
			if t.UpdateRpm() {
				t.PrintReport(sink)
				return nil
			}
		}
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or
// empty disables the live page.
func resolveWSBroker(ws, broker string) string {
	switch ws {
	case "off", "":
		return ""
	case "=broker":
	default:
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil || u.Hostname() == "" {
		log.Printf("ws-broker: cannot derive from --broker %q", broker)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
