package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when the source has no informative events in the window.
var ErrNoData = errors.New("no window events found in time range")

// SinkError wraps a persistence failure. It aborts the whole analysis.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("saving categorized event: %v", e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
