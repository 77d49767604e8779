package status

import "strings"

// An ErrorKind is an error condition reported in the error information bytes of a status frame.
type ErrorKind int

const (
	NoMediaWhenPrinting ErrorKind = iota
	EndOfMedia
	TapeCutterJam
	UnitInUse
	FanDoesntWork
	TransmissionError
	CoverOpened
	CannotFeed
	SystemError
)

type errorBit struct {
	kind    ErrorKind
	byteIdx uint
	bit     uint
	name    string
	message string
}

var errorBits = []errorBit{
	{NoMediaWhenPrinting, 1, 0, "no-media", "no media when printing"},
	{EndOfMedia, 1, 1, "end-of-media", "end of media"},
	{TapeCutterJam, 1, 2, "cutter-jam", "tape cutter jam"},
	{UnitInUse, 1, 4, "unit-in-use", "main unit in use"},
	{FanDoesntWork, 1, 7, "fan", "fan doesn't work"},
	{TransmissionError, 2, 2, "transmission", "transmission error"},
	{CoverOpened, 2, 4, "cover-open", "cover opened while printing"},
	{CannotFeed, 2, 6, "cannot-feed", "cannot feed"},
	{SystemError, 2, 7, "system", "system error"},
}

// flag returns the kind's mask in the 16-bit value err1<<8 | err2.
func (e errorBit) flag() uint16 {
	return 1 << e.bit << ((2 - e.byteIdx) * 8)
}

// ErrorKinds returns every error kind in declaration order.
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, len(errorBits))
	for i, e := range errorBits {
		kinds[i] = e.kind
	}
	return kinds
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorBits) {
		return "unknown"
	}
	return errorBits[k].name
}

// Message returns a human-readable description of the error.
func (k ErrorKind) Message() string {
	if k < 0 || int(k) >= len(errorBits) {
		return "unknown error"
	}
	return errorBits[k].message
}

// Errors is a set of error kinds.
type Errors []ErrorKind

// Has returns true if the set contains the given kind.
func (e Errors) Has(kind ErrorKind) bool {
	for _, k := range e {
		if k == kind {
			return true
		}
	}
	return false
}

func (e Errors) String() string {
	names := make([]string, len(e))
	for i, k := range e {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// DecodeErrors returns the error kinds flagged by the two error information bytes of a status frame.
func DecodeErrors(err1, err2 byte) Errors {
	v := uint16(err1)<<8 | uint16(err2)

	var kinds Errors
	for _, e := range errorBits {
		if f := e.flag(); f&v == f {
			kinds = append(kinds, e.kind)
		}
	}
	return kinds
}
