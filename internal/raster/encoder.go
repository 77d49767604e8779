package raster

import (
	"fmt"
	"io"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
)

// An Encoder writes raster commands to an io.Writer. Each command block is sent with a single call to Write.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// Reset selects raster mode, invalidates any partial command, and initializes the printer.
func (e *Encoder) Reset() error {
	for _, b := range [][]byte{cmdSwitchToRaster, Invalidate(), cmdInitialize} {
		if err := e.write(b); err != nil {
			return err
		}
	}
	return nil
}

// SwitchToRaster selects raster mode.
func (e *Encoder) SwitchToRaster() error {
	return e.write(SwitchToRaster())
}

// RequestStatus asks the printer to send a status frame.
func (e *Encoder) RequestStatus() error {
	return e.write(StatusRequest())
}

// ControlCodes sends the job's control code block.
func (e *Encoder) ControlCodes(s Settings) error {
	return e.write(AppendControlCodes(nil, s))
}

// Page sends every raster line of the page, top to bottom.
func (e *Encoder) Page(page *bitmap.Page, media catalog.Media, twoColor bool) error {
	// Print the image one raster line at a time.
	var line []byte
	for y := 0; y < page.Height(); y++ {
		line = AppendLine(line[:0], page, y, media, twoColor)
		if err := e.write(line); err != nil {
			return fmt.Errorf("line %d: %w", y, err)
		}
	}
	return nil
}

// Print sends the print command that ends a page.
func (e *Encoder) Print(last bool) error {
	return e.write(PrintCommand(last))
}

// Encode writes a complete job for printers that are not polled for status: reset, control codes, then every page
// followed by its print command.
func Encode(w io.Writer, s Settings, pages []*bitmap.Page) error {
	e := NewEncoder(w)
	if err := e.Reset(); err != nil {
		return err
	}
	if err := e.ControlCodes(s); err != nil {
		return err
	}
	for i, p := range pages {
		if err := e.Page(p, s.Media, s.TwoColor); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if err := e.Print(i == len(pages)-1); err != nil {
			return err
		}
	}
	return nil
}
