// Package label renders generated label content, such as 2D barcodes, at the printable size of a media.
package label

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"

	"github.com/pgavlin/brotherql/internal/catalog"
)

// A Symbology is a 2D barcode format.
type Symbology string

const (
	QR         Symbology = "qr"
	DataMatrix Symbology = "datamatrix"
)

// ParseSymbology parses a symbology name.
func ParseSymbology(s string) (Symbology, error) {
	switch sym := Symbology(strings.ToLower(strings.TrimSpace(s))); sym {
	case QR, DataMatrix:
		return sym, nil
	case "":
		return QR, nil
	default:
		return "", fmt.Errorf("unknown symbology %q (want qr or datamatrix)", s)
	}
}

// Size returns the printable size of a label in dots. Continuous tape is given a square label, at least as long
// as the model's minimum length.
func Size(media catalog.Media, model catalog.Model) (int, int) {
	if media.Type == catalog.DieCut {
		return media.BodyWidthPx, media.BodyLengthPx
	}
	length := media.BodyWidthPx
	if length < model.ContinuousMinPx {
		length = model.ContinuousMinPx
	}
	return media.BodyWidthPx, length
}

// Code encodes text as a 2D barcode and centers it on a white label of the media's printable size.
func Code(sym Symbology, text string, media catalog.Media, model catalog.Model) (image.Image, error) {
	var code barcode.Barcode
	var err error
	switch sym {
	case QR:
		code, err = qr.Encode(text, qr.M, qr.Auto)
	case DataMatrix:
		code, err = datamatrix.Encode(text)
	default:
		return nil, fmt.Errorf("unknown symbology %q", sym)
	}
	if err != nil {
		return nil, err
	}

	width, height := Size(media, model)
	side := width
	if height < side {
		side = height
	}
	// Keep a quiet zone of two modules on each side.
	modules := code.Bounds().Dx() + 4
	scale := side / modules
	if scale < 1 {
		return nil, fmt.Errorf("%v with %d modules does not fit on %v", sym, code.Bounds().Dx(), media)
	}
	size := code.Bounds().Dx() * scale
	if code, err = barcode.Scale(code, size, size); err != nil {
		return nil, err
	}
	return Center(code, width, height), nil
}

// Center draws img on the middle of a white canvas of the given size.
func Center(img image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	b := img.Bounds()
	at := image.Pt((width-b.Dx())/2, (height-b.Dy())/2)
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, draw.Over)
	return canvas
}
