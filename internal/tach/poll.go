package tach

import (
	"errors"
	"fmt"
)

// PollEdges samples every enabled channel once and counts high-to-low
// transitions. It must run more often than the fastest expected pulse;
// pulses shorter than the poll interval are missed, which shows up as a
// lower RPM.
//
// A failed read leaves that channel's level and count untouched. All
// failures are returned joined.
func (t *Tach) PollEdges() error {
	if t.cfg.Mode != ModePolled {
		return ErrNotPolled
	}

	var errs []error
	for _, ch := range t.active {
		level, err := t.pins.ReadLevel(ch.cfg.Pin)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.cfg.Name, err))
			continue
		}
		if ch.level && !level {
			ch.count.Add(1)
		}
		ch.level = level
	}
	return errors.Join(errs...)
}
