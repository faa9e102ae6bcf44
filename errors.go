package pixfilter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKernelTooLarge is returned when a kernel is wider or taller than
	// the image it is applied to. No output is produced.
	ErrKernelTooLarge = errors.New("kernel too large for image")

	// ErrInvalidBufferLength is returned when a pixel buffer's length is not
	// width*height*4.
	ErrInvalidBufferLength = errors.New("invalid pixel buffer length")

	// ErrInvalidDimensions is the name the buffer adapter uses for
	// ErrInvalidBufferLength.
	ErrInvalidDimensions = ErrInvalidBufferLength

	// ErrInvalidKernel is returned for kernels whose weights do not match
	// their size or whose origin lies outside the matrix.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrUnknownFilter is returned by ParseFilter for unrecognised names.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrInvalidOption is returned by NewEngine for unusable configuration.
	ErrInvalidOption = errors.New("invalid engine option")
)

// BandError records why a single band did not complete.
type BandError struct {
	Band Band
	Err  error
}

func (e BandError) Error() string {
	return fmt.Sprintf("band [%d,%d): %v", e.Band.Start, e.Band.End, e.Err)
}

func (e BandError) Unwrap() error { return e.Err }

// PartialError is returned when one or more bands of an operation did not
// complete. The output buffer returned alongside it is still valid; rows of
// the failed bands that were not reached are left zero.
type PartialError struct {
	Op     string
	Bands  int
	Failed []BandError
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d bands failed", e.Op, len(e.Failed), e.Bands)
	for _, f := range e.Failed {
		b.WriteString("; ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes every band failure to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
