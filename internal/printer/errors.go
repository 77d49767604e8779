package printer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgavlin/brotherql/internal/status"
)

var (
	ErrNotConnected              = errors.New("printer not connected")
	ErrAlreadyOpen               = errors.New("connection already open")
	ErrOpenFailed                = errors.New("cannot open printer")
	ErrNotReady                  = errors.New("printer not ready")
	ErrIncompleteJob             = errors.New("job has no images")
	ErrUnknownMedia              = errors.New("unknown media")
	ErrUnsupportedHighResolution = errors.New("high resolution printing unsupported")
	ErrImageWidthMismatch        = errors.New("image width does not match media")
	ErrImageHeightOutOfRange     = errors.New("image height out of range")
	ErrImageHeightMismatch       = errors.New("image height does not match media")
	ErrImagesVaryInSize          = errors.New("images vary in size")
	ErrInvalidCutCount           = errors.New("cut count out of range")
	ErrTransmission              = errors.New("transmission error")
	ErrStatusTimeout             = errors.New("status timeout")
	ErrDeviceError               = errors.New("printer reported an error")
)

// An Error describes a failed operation. Kind is one of the sentinel errors of this package; the remaining fields
// are set when they apply to the kind.
type Error struct {
	Kind error

	// Page is the zero-based index of the page being processed, or -1.
	Page int

	Expected int
	Actual   int
	Min      int
	Max      int

	// Elapsed is the time spent waiting for a status.
	Elapsed time.Duration

	// Status is the last status known when the error occurred.
	Status *status.Status

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	switch e.Kind {
	case ErrImageWidthMismatch, ErrImageHeightMismatch:
		fmt.Fprintf(&b, ": expected %d dots, got %d", e.Expected, e.Actual)
	case ErrImageHeightOutOfRange:
		fmt.Fprintf(&b, ": %d dots not in [%d, %d]", e.Actual, e.Min, e.Max)
	case ErrInvalidCutCount:
		fmt.Fprintf(&b, ": %d not in [%d, %d]", e.Actual, e.Min, e.Max)
	case ErrStatusTimeout:
		fmt.Fprintf(&b, " after %v", e.Elapsed)
	}
	if e.Page >= 0 {
		fmt.Fprintf(&b, " (page %d)", e.Page)
	}
	if e.Status != nil && (e.Kind == ErrNotReady || e.Kind == ErrDeviceError || e.Kind == ErrStatusTimeout) {
		fmt.Fprintf(&b, ": %v", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, page int) *Error {
	return &Error{Kind: kind, Page: page}
}

// onPage records the page index on printer errors that do not have one.
func onPage(err error, page int) error {
	var e *Error
	if errors.As(err, &e) && e.Page < 0 {
		e.Page = page
	}
	return err
}
