package gpio

import (
	"errors"
	"fmt"
	"io"
)

// closeAll closes every line in lines and then chip, if non-nil. All
// failures are returned joined.
func closeAll[L io.Closer](lines map[Pin]L, chip io.Closer) error {
	var errs []error
	for pin, line := range lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if chip != nil {
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
