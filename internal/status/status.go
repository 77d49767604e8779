// Package status decodes the 32-byte status frames sent by Brother QL printers.
package status

import (
	"fmt"
	"strings"

	"github.com/pgavlin/brotherql/internal/catalog"
)

// FrameSize is the size of a status frame.
const FrameSize = 32

const (
	offModelCode = 4
	offErr1      = 8
	offErr2      = 9
	offWidth     = 10
	offMediaType = 11
	offLength    = 17
	offType      = 18
	offPhase     = 19
)

// Type is the coarse status type of a frame.
type Type byte

const (
	Ready             Type = 0x00
	PrintingCompleted Type = 0x01
	ErrorOccurred     Type = 0x02
	Notification      Type = 0x05
	PhaseChange       Type = 0x06

	// Unavailable and NotConnected are never sent by a printer. They describe synthetic frames.
	Unavailable  Type = 0xF0
	NotConnected Type = 0xF1
)

func (t Type) String() string {
	switch t {
	case Ready:
		return "ready"
	case PrintingCompleted:
		return "printing-completed"
	case ErrorOccurred:
		return "error"
	case Notification:
		return "notification"
	case PhaseChange:
		return "phase-change"
	case Unavailable:
		return "unavailable"
	case NotConnected:
		return "not-connected"
	default:
		return fmt.Sprintf("0x%02x", byte(t))
	}
}

// Phase is the activity state of the printer.
type Phase byte

const (
	Waiting  Phase = 0x00
	Printing Phase = 0x01
	Unknown  Phase = 0xFF
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Printing:
		return "printing"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("0x%02x", byte(p))
	}
}

// A Status is an immutable snapshot of a printer status frame.
type Status struct {
	frame [FrameSize]byte
	model catalog.Model
}

func synthetic(t Type, model catalog.Model) *Status {
	s := &Status{model: model}
	s.frame[offMediaType] = byte(catalog.UnknownMedia)
	s.frame[offType] = byte(t)
	s.frame[offPhase] = byte(Unknown)
	return s
}

// NewUnavailable returns the status used when a printer did not answer.
func NewUnavailable(model catalog.Model) *Status {
	return synthetic(Unavailable, model)
}

// NewNotConnected returns the status used when no printer is connected.
func NewNotConnected() *Status {
	return synthetic(NotConnected, catalog.Unknown)
}

// Parse decodes a status frame sent by a printer of the given model. A nil frame from an unknown model decodes as
// NotConnected; other frames shorter than FrameSize decode as Unavailable. Extra trailing bytes are ignored. If the
// model is unknown, it is looked up from the frame's model code.
func Parse(b []byte, model catalog.Model) *Status {
	if b == nil && !model.Known() {
		return NewNotConnected()
	}
	if len(b) < FrameSize {
		return NewUnavailable(model)
	}
	s := &Status{model: model}
	copy(s.frame[:], b)
	if !model.Known() {
		s.model = catalog.ModelByStatusCode(s.ModelCode())
	}
	return s
}

// Bytes returns a copy of the raw frame.
func (s *Status) Bytes() []byte {
	return append([]byte(nil), s.frame[:]...)
}

// Model returns the printer model the frame was read from.
func (s *Status) Model() catalog.Model {
	return s.model
}

// ModelCode returns the model code reported by the printer.
func (s *Status) ModelCode() byte {
	return s.frame[offModelCode]
}

// Errors returns the error conditions flagged by the frame.
func (s *Status) Errors() Errors {
	return DecodeErrors(s.frame[offErr1], s.frame[offErr2])
}

// MediaWidth returns the width of the loaded media in millimeters.
func (s *Status) MediaWidth() int {
	return int(s.frame[offWidth])
}

// MediaLength returns the length of the loaded media in millimeters. It is 0 for continuous tape.
func (s *Status) MediaLength() int {
	return int(s.frame[offLength])
}

// MediaType returns the type of the loaded media.
func (s *Status) MediaType() catalog.MediaType {
	return catalog.MediaType(s.frame[offMediaType])
}

// Type returns the status type.
func (s *Status) Type() Type {
	return Type(s.frame[offType])
}

// Phase returns the phase type.
func (s *Status) Phase() Phase {
	return Phase(s.frame[offPhase])
}

// Synthetic returns true if the status was not read from a printer.
func (s *Status) Synthetic() bool {
	t := s.Type()
	return t == Unavailable || t == NotConnected
}

// Media identifies the loaded media.
func (s *Status) Media() (catalog.Media, bool) {
	return catalog.Identify(s.model, s.MediaType(), s.MediaWidth(), s.MediaLength())
}

func (s *Status) dimension() string {
	if s.MediaLength() == 0 {
		return fmt.Sprintf("%dmm", s.MediaWidth())
	}
	return fmt.Sprintf("%dmm x %dmm", s.MediaWidth(), s.MediaLength())
}

func (s *Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=%v media=%v (%v) phase=%v", s.Type(), s.MediaType(), s.dimension(), s.Phase())
	if errs := s.Errors(); len(errs) != 0 {
		fmt.Fprintf(&b, " errors=%v", errs)
	}
	return b.String()
}
