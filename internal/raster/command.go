// Package raster encodes the Brother QL raster command language.
package raster

import (
	"encoding/binary"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
)

// InvalidateSize is the number of zero bytes sent to flush a partially received command.
const InvalidateSize = 400

// DefaultFeedAmount is the feed margin used on continuous tape by models that do not accept a custom margin.
const DefaultFeedAmount = 35

var (
	cmdInitialize     = []byte{0x1B, 0x40}
	cmdStatusRequest  = []byte{0x1B, 0x69, 0x53}
	cmdSwitchToRaster = []byte{0x1B, 0x69, 0x61, 0x01}
	cmdPrintInfo      = []byte{0x1B, 0x69, 0x7A}
	cmdAutocutOn      = []byte{0x1B, 0x69, 0x4D, 0x40}
	cmdAutocutOff     = []byte{0x1B, 0x69, 0x4D, 0x00}
	cmdCutEvery       = []byte{0x1B, 0x69, 0x41}
	cmdExpandedMode   = []byte{0x1B, 0x69, 0x4B}
	cmdMargin         = []byte{0x1B, 0x69, 0x64}
	cmdRasterLine     = []byte{0x67, 0x00}
	cmdFirstColor     = []byte{0x77, 0x01}
	cmdSecondColor    = []byte{0x77, 0x02}
	cmdPrint          = []byte{0x0C}
	cmdPrintLast      = []byte{0x1A}
)

// Print information validity flags.
const (
	piKind    = 0x02
	piWidth   = 0x04
	piLength  = 0x08
	piQuality = 0x40
	piRecover = 0x80
)

// Expanded mode flags.
const (
	expandedTwoColor       = 0x01
	expandedHighResolution = 0x40
)

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

// Initialize returns the initialize command.
func Initialize() []byte { return clone(cmdInitialize) }

// StatusRequest returns the status information request command.
func StatusRequest() []byte { return clone(cmdStatusRequest) }

// SwitchToRaster returns the command that selects raster mode on printers with several command modes.
func SwitchToRaster() []byte { return clone(cmdSwitchToRaster) }

// Invalidate returns the invalidate command.
func Invalidate() []byte { return make([]byte, InvalidateSize) }

// PrintCommand returns the print command. The last page of a job uses print with feeding.
func PrintCommand(last bool) []byte {
	if last {
		return clone(cmdPrintLast)
	}
	return clone(cmdPrint)
}

// Settings holds the job-wide parameters of the control code block.
type Settings struct {
	Model catalog.Model
	Media catalog.Media

	// Lines is the number of raster lines of each page.
	Lines int

	Autocut  bool
	CutEvery int
	// FeedAmount is the requested feed margin in dots. Only models that allow a feed margin honor it.
	FeedAmount     int
	HighResolution bool
	TwoColor       bool
}

// FeedAmount returns the feed margin actually sent for a job on the given model and media.
func FeedAmount(model catalog.Model, media catalog.Media, requested int) int {
	switch {
	case model.AllowsFeedMargin:
		return requested & 0xFFFF
	case media.Type == catalog.DieCut:
		return 0
	default:
		return DefaultFeedAmount
	}
}

// AppendControlCodes appends the print information, autocut, expanded mode, and margin commands to dst.
func AppendControlCodes(dst []byte, s Settings) []byte {
	pi := byte(piKind | piWidth | piQuality | piRecover)
	if s.Media.Type != catalog.Continuous {
		pi |= piLength
	}
	dst = append(dst, cmdPrintInfo...)
	dst = append(dst, pi, byte(s.Media.Type), byte(s.Media.WidthMm), byte(s.Media.LengthMm))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(s.Lines))
	dst = append(dst, 0, 0)

	if s.Autocut {
		dst = append(dst, cmdAutocutOn...)
		dst = append(dst, cmdCutEvery...)
		dst = append(dst, byte(s.CutEvery))
	} else {
		dst = append(dst, cmdAutocutOff...)
	}

	var expanded byte
	if s.HighResolution {
		expanded |= expandedHighResolution
	}
	if s.TwoColor {
		expanded |= expandedTwoColor
	}
	if expanded != 0 {
		dst = append(dst, cmdExpandedMode...)
		dst = append(dst, expanded)
	}

	dst = append(dst, cmdMargin...)
	return binary.LittleEndian.AppendUint16(dst, uint16(FeedAmount(s.Model, s.Media, s.FeedAmount)))
}

// AppendLine appends raster line y of page to dst. Two-color lines carry the black plane followed by the red
// plane.
func AppendLine(dst []byte, page *bitmap.Page, y int, media catalog.Media, twoColor bool) []byte {
	if !twoColor {
		dst = append(dst, cmdRasterLine...)
		dst = append(dst, byte(media.BytesPerLine))
		return appendPlaneLine(dst, page.Black, y, media)
	}

	dst = append(dst, cmdFirstColor...)
	dst = append(dst, byte(media.BytesPerLine))
	dst = appendPlaneLine(dst, page.Black, y, media)

	dst = append(dst, cmdSecondColor...)
	dst = append(dst, byte(media.BytesPerLine))
	return appendPlaneLine(dst, page.Red, y, media)
}

// appendPlaneLine packs one line of a plane MSB-first: the left margin, the body from right to left, then the right
// margin. The print head's first dot is the image's rightmost pixel.
func appendPlaneLine(dst []byte, plane *bitmap.Plane, y int, media catalog.Media) []byte {
	var w bitWriter
	w.buf = dst
	w.zeros(media.LeftMarginPx)
	for x := media.BodyWidthPx - 1; x >= 0; x-- {
		w.bit(plane != nil && plane.BitAt(x, y))
	}
	w.zeros(media.RightMarginPx)
	return w.flush()
}
