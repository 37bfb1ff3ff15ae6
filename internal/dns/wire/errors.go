package wire

import (
	"errors"
	"fmt"
)

// ErrFormat is the sentinel all wire-level decode failures wrap: truncated
// input, oversized labels, pointer loops, oversized names, bad rdlength,
// and TSIG/OPT internal length mismatches.
var ErrFormat = errors.New("format error")

// FormatError carries the specific reason a message failed to decode,
// while still satisfying errors.Is(err, ErrFormat).
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("format error: %s", e.Reason) }
func (e *FormatError) Unwrap() error { return ErrFormat }

func newFormatError(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
