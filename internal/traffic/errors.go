package traffic

import (
	"errors"
	"fmt"
)

// ErrInvalidCounterValue is returned when a counter or stored total is not a
// finite non-negative number.
var ErrInvalidCounterValue = errors.New("invalid counter value")

func invalidValue(name string, v any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidCounterValue, name, v)
}
