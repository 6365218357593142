package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/fan-tach/internal/tach"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

// fakeClient records publishes. Methods the publisher never calls are left
// to the embedded nil interface.
type fakeClient struct {
	paho.Client

	mu        sync.Mutex
	published []bufferedMsg
	err       error

	// onPublish, if set, runs after each publish is recorded.
	onPublish func(n int)
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, bufferedMsg{topic: topic, payload: payload.([]byte), qos: qos, retained: retained})
	n := len(c.published)
	hook := c.onPublish
	err := c.err
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return doneToken{err: err}
}

func (c *fakeClient) IsConnectionOpen() bool { return true }

func (c *fakeClient) intervals(t *testing.T) []uint32 {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []uint32
	for _, m := range c.published {
		if m.topic != Topic {
			continue
		}
		var p Payload
		if err := json.Unmarshal(m.payload, &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		out = append(out, p.Fans.IntervalMs)
	}
	return out
}

func newTestPublisher(c *fakeClient) *RealPublisher {
	return &RealPublisher{client: c, buf: newRingBuffer(8)}
}

// window tags each message with a distinct interval so order can be checked.
func window(interval uint32) Window {
	return Window{
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IntervalMs: interval,
		Readings:   []tach.Reading{{Name: "E0", Enabled: true, RPM: 1200}},
	}
}

func equalIntervals(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRealPublisherBuffersUntilConnected(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(window(1))
	p.Publish(window(2))
	if got := c.intervals(t); len(got) != 0 {
		t.Fatalf("published before connect: %v", got)
	}

	p.onConnect(c)
	p.Publish(window(3))

	if got := c.intervals(t); !equalIntervals(got, []uint32{1, 2, 3}) {
		t.Errorf("order: got %v, want [1 2 3]", got)
	}
	if n := p.buf.len(); n != 0 {
		t.Errorf("buffer: %d messages left", n)
	}
}

func TestRealPublisherSendDuringReplay(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)

	p.Publish(window(1))
	p.Publish(window(2))

	// A window completes while the first buffered message is in flight.
	c.onPublish = func(n int) {
		if n == 1 {
			p.Publish(window(3))
		}
	}
	p.onConnect(c)
	c.onPublish = nil
	p.Publish(window(4))

	if got := c.intervals(t); !equalIntervals(got, []uint32{1, 2, 3, 4}) {
		t.Errorf("order: got %v, want [1 2 3 4]", got)
	}
	if n := p.buf.len(); n != 0 {
		t.Errorf("window left in buffer while connected: %d", n)
	}
}

func TestRealPublisherBuffersAfterConnectionLost(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)
	p.onConnect(c)

	p.Publish(window(1))
	p.onConnectionLost(c, errors.New("EOF"))
	p.Publish(window(2))
	p.PublishSystem(SystemEvent{Event: "HEARTBEAT", Timestamp: time.Now()})

	if got := c.intervals(t); !equalIntervals(got, []uint32{1}) {
		t.Fatalf("published while offline: %v", got)
	}
	if n := p.buf.len(); n != 2 {
		t.Fatalf("buffer: got %d, want 2", n)
	}

	p.onConnect(c)
	if got := c.intervals(t); !equalIntervals(got, []uint32{1, 2}) {
		t.Errorf("order: got %v, want [1 2]", got)
	}

	c.mu.Lock()
	last := c.published[len(c.published)-1]
	c.mu.Unlock()
	if last.topic != TopicSystem || last.qos != 1 {
		t.Errorf("system event replayed as %+v", last)
	}
}

func TestRealPublisherConcurrentSendAndReconnect(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)
	p.buf = newRingBuffer(1000)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint32(1); i <= 200; i++ {
			p.Publish(window(i))
		}
	}()
	p.onConnect(c)
	wg.Wait()

	got := c.intervals(t)
	if len(got) != 200 {
		t.Fatalf("published %d windows, want 200 (buffered %d)", len(got), p.buf.len())
	}
	for i, v := range got {
		if v != uint32(i+1) {
			t.Fatalf("window %d out of order: got interval %d", i, v)
		}
	}
}

func TestRealPublisherReplayErrorContinues(t *testing.T) {
	c := &fakeClient{err: errors.New("not authorized")}
	p := newTestPublisher(c)

	p.Publish(window(1))
	p.Publish(window(2))
	p.onConnect(c)

	if got := c.intervals(t); !equalIntervals(got, []uint32{1, 2}) {
		t.Errorf("attempts: got %v, want [1 2]", got)
	}
	if err := p.Publish(window(3)); err == nil {
		t.Error("expected publish error once online")
	}
}
