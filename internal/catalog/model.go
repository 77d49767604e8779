// Package catalog holds the static capability tables for Brother QL printer models and label media.
package catalog

import "strings"

const (
	// NarrowBytesPerLine is the raster line size of 720-pin print heads.
	NarrowBytesPerLine = 90
	// WideBytesPerLine is the raster line size of 1296-pin print heads.
	WideBytesPerLine = 162
)

// A Model describes the capabilities of a printer model.
type Model struct {
	Name string

	// USBProductID is the USB product id reported by the device descriptor.
	USBProductID uint16
	// StatusCode is the model code reported at offset 4 of a status frame.
	StatusCode byte

	// AllowsFeedMargin is true if the model honors a custom feed margin.
	AllowsFeedMargin bool
	// ContinuousMinPx and ContinuousMaxPx bound the printable length on continuous tape, in dots.
	ContinuousMinPx int
	ContinuousMaxPx int
	// RasterOnly is true if the model only understands the raster protocol.
	RasterOnly bool
	// HighResolution is true if the model supports 300x600 dpi printing.
	HighResolution bool
	// TwoColor is true if the model can print black/red media.
	TwoColor bool
	// BytesPerLine is the raster line size of the model's print head.
	BytesPerLine int
}

// String returns the model's name.
func (m Model) String() string {
	return m.Name
}

// Known returns false for the Unknown model.
func (m Model) Known() bool {
	return m != Unknown
}

// Unknown is returned by lookups that do not match any known model. It has no capabilities.
var Unknown = Model{Name: "unknown"}

var (
	QL500      = Model{"QL-500", 0x2015, 0x4F, true, 295, 11811, true, false, false, NarrowBytesPerLine}
	QL550      = Model{"QL-550", 0x2016, 0x4F, false, 295, 11811, true, false, false, NarrowBytesPerLine}
	QL560      = Model{"QL-560", 0x2027, 0x31, false, 295, 11811, true, false, false, NarrowBytesPerLine}
	QL570      = Model{"QL-570", 0x2028, 0x32, false, 150, 11811, true, true, false, NarrowBytesPerLine}
	QL580N     = Model{"QL-580N", 0x2029, 0x33, false, 150, 11811, false, true, false, NarrowBytesPerLine}
	QL600      = Model{"QL-600", 0x20C0, 0x47, true, 150, 11811, false, true, false, NarrowBytesPerLine}
	QL650TD    = Model{"QL-650TD", 0x201B, 0x51, true, 295, 11811, false, false, false, NarrowBytesPerLine}
	QL700      = Model{"QL-700", 0x2042, 0x35, false, 150, 11811, true, true, false, NarrowBytesPerLine}
	QL700M     = Model{"QL-700M", 0x2049, 0x35, false, 150, 11811, true, true, false, NarrowBytesPerLine}
	QL710W     = Model{"QL-710W", 0x2043, 0x36, false, 150, 11811, true, true, false, NarrowBytesPerLine}
	QL720NW    = Model{"QL-720NW", 0x2044, 0x37, false, 150, 11811, true, true, false, NarrowBytesPerLine}
	QL800      = Model{"QL-800", 0x209B, 0x38, false, 150, 11811, true, true, true, NarrowBytesPerLine}
	QL810W     = Model{"QL-810W", 0x209C, 0x39, false, 150, 11811, true, true, true, NarrowBytesPerLine}
	QL820NWB   = Model{"QL-820NWB", 0x209D, 0x41, false, 150, 11811, true, true, true, NarrowBytesPerLine}
	QL1050     = Model{"QL-1050", 0x2020, 0x50, true, 295, 35433, false, false, false, WideBytesPerLine}
	QL1060N    = Model{"QL-1060N", 0x202A, 0x34, true, 295, 35433, false, false, false, WideBytesPerLine}
	QL1100     = Model{"QL-1100", 0x20A7, 0x43, false, 150, 35433, true, false, false, WideBytesPerLine}
	QL1110NWB  = Model{"QL-1110NWB", 0x20A8, 0x44, false, 150, 35433, true, false, false, WideBytesPerLine}
	QL1115NWB  = Model{"QL-1115NWB", 0x20AB, 0x45, false, 150, 35433, true, false, false, WideBytesPerLine}
)

// models lists every known model. When two models share a status code, the last one listed wins.
var models = []Model{
	QL500, QL550, QL560, QL570, QL580N, QL600, QL650TD,
	QL700, QL700M, QL710W, QL720NW,
	QL800, QL810W, QL820NWB,
	QL1050, QL1060N, QL1100, QL1110NWB, QL1115NWB,
}

// Models returns a copy of the model table.
func Models() []Model {
	return append([]Model(nil), models...)
}

// ModelByUSBID returns the model with the given USB product id, or Unknown.
func ModelByUSBID(id uint16) Model {
	for _, m := range models {
		if m.USBProductID == id {
			return m
		}
	}
	return Unknown
}

// ModelByStatusCode returns the model with the given status model code, or Unknown.
func ModelByStatusCode(code byte) Model {
	for i := len(models) - 1; i >= 0; i-- {
		if models[i].StatusCode == code {
			return models[i]
		}
	}
	return Unknown
}

// ModelByName returns the model with the given name, or Unknown. Matching ignores case and an optional
// "Brother " prefix.
func ModelByName(name string) Model {
	name = strings.TrimSpace(name)
	if len(name) > 8 && strings.EqualFold(name[:8], "brother ") {
		name = name[8:]
	}
	for _, m := range models {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return Unknown
}
