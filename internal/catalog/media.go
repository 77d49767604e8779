package catalog

import (
	"fmt"
	"strings"
)

// MediaType is the media type code reported by the printer.
type MediaType byte

const (
	NoMedia      MediaType = 0x00
	Continuous   MediaType = 0x0A
	DieCut       MediaType = 0x0B
	UnknownMedia MediaType = 0xFF
)

func (t MediaType) String() string {
	switch t {
	case NoMedia:
		return "no media"
	case Continuous:
		return "continuous"
	case DieCut:
		return "die-cut"
	case UnknownMedia:
		return "unknown"
	default:
		return fmt.Sprintf("media type 0x%02x", byte(t))
	}
}

// Media describes a label stock. Pixel dimensions are in dots at 300 dpi.
type Media struct {
	Name string
	Type MediaType

	// WidthMm and LengthMm are the physical label size. LengthMm is 0 for continuous tape.
	WidthMm  int
	LengthMm int

	LeftMarginPx  int
	BodyWidthPx   int
	RightMarginPx int
	// BodyLengthPx is the printable length of a die-cut label. It is 0 for continuous tape.
	BodyLengthPx int

	// BytesPerLine is the number of raster graphics transfer bytes sent per printed line.
	BytesPerLine int

	// TwoColor is true for black/red stock.
	TwoColor bool
}

func (m Media) String() string {
	return m.Name
}

// Dimension returns a human-readable label size.
func (m Media) Dimension() string {
	if m.LengthMm == 0 {
		return fmt.Sprintf("%dmm", m.WidthMm)
	}
	return fmt.Sprintf("%dmm x %dmm", m.WidthMm, m.LengthMm)
}

// SameStock returns true if both media have the same type, size, and line family.
func (m Media) SameStock(o Media) bool {
	return m.Type == o.Type && m.WidthMm == o.WidthMm && m.LengthMm == o.LengthMm && m.BytesPerLine == o.BytesPerLine
}

func ct(name string, widthMm, bodyWidth, left, right, bpl int) Media {
	return Media{
		Name:          name,
		Type:          Continuous,
		WidthMm:       widthMm,
		LeftMarginPx:  left,
		BodyWidthPx:   bodyWidth,
		RightMarginPx: right,
		BytesPerLine:  bpl,
	}
}

func dc(name string, widthMm, lengthMm, bodyWidth, bodyLength, left, right, bpl int) Media {
	return Media{
		Name:          name,
		Type:          DieCut,
		WidthMm:       widthMm,
		LengthMm:      lengthMm,
		LeftMarginPx:  left,
		BodyWidthPx:   bodyWidth,
		RightMarginPx: right,
		BodyLengthPx:  bodyLength,
		BytesPerLine:  bpl,
	}
}

func twoColor(m Media) Media {
	m.TwoColor = true
	return m
}

var media = []Media{
	ct("CT_12_720", 12, 106, 585, 29, NarrowBytesPerLine),
	ct("CT_29_720", 29, 306, 408, 6, NarrowBytesPerLine),
	ct("CT_38_720", 38, 413, 295, 12, NarrowBytesPerLine),
	ct("CT_50_720", 50, 554, 154, 12, NarrowBytesPerLine),
	ct("CT_54_720", 54, 590, 130, 0, NarrowBytesPerLine),
	ct("CT_62_720", 62, 696, 12, 12, NarrowBytesPerLine),
	twoColor(ct("CT_62_RB_720", 62, 696, 12, 12, NarrowBytesPerLine)),

	dc("DC_17X54_720", 17, 54, 165, 566, 555, 0, NarrowBytesPerLine),
	dc("DC_17X87_720", 17, 87, 165, 956, 555, 0, NarrowBytesPerLine),
	dc("DC_23X23_720", 23, 23, 236, 202, 442, 42, NarrowBytesPerLine),
	dc("DC_29X90_720", 29, 90, 306, 991, 408, 6, NarrowBytesPerLine),
	dc("DC_38X90_720", 38, 90, 413, 991, 295, 12, NarrowBytesPerLine),
	dc("DC_39X48_720", 39, 48, 425, 495, 289, 6, NarrowBytesPerLine),
	dc("DC_52X29_720", 52, 29, 578, 271, 142, 0, NarrowBytesPerLine),
	dc("DC_62X29_720", 62, 29, 696, 271, 12, 12, NarrowBytesPerLine),
	dc("DC_62X100_720", 62, 100, 696, 1109, 12, 12, NarrowBytesPerLine),
	dc("DC_12_DIA_720", 12, 12, 94, 94, 513, 113, NarrowBytesPerLine),
	dc("DC_24_DIA_720", 24, 24, 236, 236, 442, 42, NarrowBytesPerLine),
	dc("DC_58_DIA_720", 58, 58, 618, 618, 51, 51, NarrowBytesPerLine),

	ct("CT_12_1296", 12, 106, 1116, 74, WideBytesPerLine),
	ct("CT_29_1296", 29, 306, 940, 50, WideBytesPerLine),
	ct("CT_38_1296", 38, 413, 827, 56, WideBytesPerLine),
	ct("CT_50_1296", 50, 554, 686, 56, WideBytesPerLine),
	ct("CT_54_1296", 54, 590, 662, 44, WideBytesPerLine),
	ct("CT_62_1296", 62, 696, 544, 56, WideBytesPerLine),
	ct("CT_102_1296", 102, 1164, 76, 56, WideBytesPerLine),

	dc("DC_17X54_1296", 17, 54, 165, 566, 1087, 44, WideBytesPerLine),
	dc("DC_17X87_1296", 17, 87, 165, 956, 1087, 44, WideBytesPerLine),
	dc("DC_23X23_1296", 23, 23, 236, 202, 976, 84, WideBytesPerLine),
	dc("DC_29X90_1296", 29, 90, 306, 991, 940, 50, WideBytesPerLine),
	dc("DC_38X90_1296", 38, 90, 413, 991, 827, 56, WideBytesPerLine),
	dc("DC_39X48_1296", 39, 48, 425, 495, 821, 50, WideBytesPerLine),
	dc("DC_52X29_1296", 52, 29, 578, 271, 674, 44, WideBytesPerLine),
	dc("DC_62X29_1296", 62, 29, 696, 271, 544, 56, WideBytesPerLine),
	dc("DC_62X100_1296", 62, 100, 696, 1109, 544, 56, WideBytesPerLine),
	dc("DC_102X51_1296", 102, 51, 1164, 526, 76, 56, WideBytesPerLine),
	// The printer reports 153mm for this stock.
	dc("DC_102X152_1296", 102, 153, 1164, 1660, 76, 56, WideBytesPerLine),
	dc("DC_12_DIA_1296", 12, 12, 94, 94, 1046, 156, WideBytesPerLine),
	dc("DC_24_DIA_1296", 24, 24, 236, 236, 975, 85, WideBytesPerLine),
	dc("DC_58_DIA_1296", 58, 58, 618, 618, 584, 94, WideBytesPerLine),
}

// Medias returns a copy of the media table.
func Medias() []Media {
	return append([]Media(nil), media...)
}

// MediaByName returns the media with the given catalog name, e.g. "CT_62_720".
func MediaByName(name string) (Media, bool) {
	name = strings.TrimSpace(name)
	for _, m := range media {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Media{}, false
}

// Identify returns the media loaded in a printer of the given model, as described by a status frame.
//
// The model selects the raster line family; type, width, and length must then match exactly one entry of that
// family. Two-color variants are never identified since the status frame cannot tell them apart from black-only
// stock.
func Identify(model Model, mediaType MediaType, widthMm, lengthMm int) (Media, bool) {
	var found Media
	matches := 0
	for _, m := range media {
		if m.TwoColor || m.BytesPerLine != model.BytesPerLine {
			continue
		}
		if m.Type == mediaType && m.WidthMm == widthMm && m.LengthMm == lengthMm {
			found = m
			matches++
		}
	}
	if matches != 1 {
		return Media{}, false
	}
	return found, true
}
