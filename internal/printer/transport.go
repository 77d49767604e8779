package printer

import (
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
)

// A Transport moves bytes to and from a printer.
type Transport interface {
	// Open opens the transport. Opening an open transport is an error.
	Open() error
	// Model returns the printer model, or catalog.Unknown if it cannot be determined.
	Model() catalog.Model
	// ReadStatus reads one status frame. It returns a nil frame without error on timeout or short read.
	ReadStatus(timeout time.Duration) ([]byte, error)
	// Write sends b to the printer.
	Write(b []byte, timeout time.Duration) error
	IsClosed() bool
	Close() error
	// SelfReporting returns true if the printer sends status frames while printing. The controller only polls
	// such transports.
	SelfReporting() bool
}

// A Clock provides the blocking waits of the job controller.
type Clock interface {
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// SystemClock sleeps with time.Sleep.
var SystemClock Clock = systemClock{}

// A PollPolicy controls the timing of transport operations.
type PollPolicy struct {
	// Interval is the wait between two status reads while a page prints.
	Interval time.Duration
	// Budget is the total time allowed for a page to finish printing.
	Budget time.Duration
	// ReadTimeout and WriteTimeout are passed to the transport.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultPollPolicy returns the default policy: 200ms polls within a 2s budget and 1s transport timeouts.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Interval:     200 * time.Millisecond,
		Budget:       2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// withDefaults replaces the non-positive fields of p by their default values.
func (p PollPolicy) withDefaults() PollPolicy {
	d := DefaultPollPolicy()
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.Budget <= 0 {
		p.Budget = d.Budget
	}
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = d.ReadTimeout
	}
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = d.WriteTimeout
	}
	return p
}
