package tach

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	labels []string
	values []uint32
	lines  int
}

func (s *recordingSink) Write(label string, value uint32) {
	s.labels = append(s.labels, label)
	s.values = append(s.values, value)
}

func (s *recordingSink) EndLine() {
	s.lines++
}

func TestPrintReportEnabledOnly(t *testing.T) {
	r := newRig(t, ModeInterrupt, 1000,
		fan("E0", 3, 2),
		ChannelConfig{Name: "E1", Pin: 4, PPR: 2},
		fan("0", 5, 2),
	)
	r.fire(t, 3, 40)
	r.fire(t, 5, 28)
	r.clock.Advance(1000)
	require.True(t, r.tach.UpdateRpm())

	var s recordingSink
	r.tach.PrintReport(&s)

	assert.Equal(t, []string{"E0", "0"}, s.labels)
	assert.Equal(t, []uint32{1200, 840}, s.values)
	assert.Equal(t, 1, s.lines)
}

func TestPrintReportHasNoSideEffects(t *testing.T) {
	r := newRig(t, ModeInterrupt, 1000, fan("E0", 3, 2))
	r.fire(t, 3, 5)

	var buf bytes.Buffer
	r.tach.PrintReport(NewTextSink(&buf))

	assert.Equal(t, uint32(5), r.tach.channels[0].count.Load())
	assert.Equal(t, uint32(0), r.tach.Interval())
	assert.False(t, r.tach.UpdateRpm())
}

func TestTextSink(t *testing.T) {
	r := newRig(t, ModeInterrupt, 1000, fan("E0", 3, 2), fan("0", 5, 2))
	r.fire(t, 3, 40)
	r.fire(t, 5, 28)
	r.clock.Advance(1000)
	require.True(t, r.tach.UpdateRpm())

	var buf bytes.Buffer
	r.tach.PrintReport(NewTextSink(&buf))
	assert.Equal(t, " E0: 1200 0: 840\n", buf.String())
}

func TestTextSinkNoChannels(t *testing.T) {
	r := newRig(t, ModePolled, 1000)

	var buf bytes.Buffer
	r.tach.PrintReport(NewTextSink(&buf))
	assert.Equal(t, "\n", buf.String())
}

func TestReadings(t *testing.T) {
	r := newRig(t, ModeInterrupt, 1000,
		fan("E0", 3, 2),
		ChannelConfig{Name: "E1", Pin: 4, PPR: 2},
	)
	r.fire(t, 3, 40)
	r.clock.Advance(1000)
	require.True(t, r.tach.UpdateRpm())

	assert.Equal(t, []Reading{
		{Name: "E0", Enabled: true, RPM: 1200},
		{Name: "E1", Enabled: false, RPM: 0},
	}, r.tach.Readings())
}
