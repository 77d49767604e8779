package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/printer"
)

// previewGap is the height of the band drawn between two pages.
const previewGap = 16

var (
	marginColor = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	gapColor    = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
)

type slice struct {
	contents *bitmap.Page
	yOrigin  int
}

// A preview shows raster pages as they come out of the printer: each page sits between the unprintable margins of
// the print head and pages are separated by a dark band. The margin sent first on each raster line is on the right.
type preview struct {
	media  catalog.Media
	slices []slice
	height int
}

func newPreview(media catalog.Media, pages []*bitmap.Page) *preview {
	p := &preview{media: media}
	for i, page := range pages {
		if i > 0 {
			p.height += previewGap
		}
		p.slices = append(p.slices, slice{contents: page, yOrigin: p.height})
		p.height += page.Height()
	}
	return p
}

func (p *preview) width() int {
	return p.media.LeftMarginPx + p.media.BodyWidthPx + p.media.RightMarginPx
}

func (p *preview) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *preview) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width(), p.height)
}

func (p *preview) At(x, y int) color.Color {
	if x < 0 || x >= p.width() || y < 0 || y >= p.height {
		return color.Transparent
	}

	i := sort.Search(len(p.slices), func(i int) bool {
		s := p.slices[i]
		return s.yOrigin+s.contents.Height() > y
	})
	if i >= len(p.slices) {
		return gapColor
	}

	s := p.slices[i]
	y -= s.yOrigin
	if y < 0 {
		return gapColor
	}

	x -= p.media.RightMarginPx
	if x < 0 || x >= p.media.BodyWidthPx {
		return marginColor
	}

	page := s.contents
	switch {
	case page.Red != nil && page.Red.BitAt(x, y):
		return bitmap.Red
	case page.Black.BitAt(x, y):
		return bitmap.Black
	default:
		return bitmap.White
	}
}

// resolveTarget completes a model and media for offline conversion. Whatever is missing is read from the printer.
func resolveTarget(ctx context.Context, st *station, model catalog.Model, media *catalog.Media) (catalog.Model, catalog.Media, error) {
	if model.Known() && media != nil {
		return model, *media, nil
	}

	var found catalog.Media
	err := st.with(ctx, func(conn *printer.Connection) error {
		model = conn.Model()
		if media != nil {
			found = *media
			return nil
		}
		s, err := conn.RequestStatus()
		if err != nil {
			return err
		}
		m, ok := conn.MediaFor(s)
		if !ok {
			return fmt.Errorf("cannot identify the loaded media (%v); set --media", s)
		}
		found = m
		return nil
	})
	if err != nil {
		return catalog.Unknown, catalog.Media{}, err
	}
	if !model.Known() {
		return catalog.Unknown, catalog.Media{}, errors.New("cannot determine the printer model; set --model")
	}
	return model, found, nil
}

// rasterize converts the job images as they would print on the target.
func rasterize(job *printer.Job, model catalog.Model, media catalog.Media) []*bitmap.Page {
	return printer.Raster(job, media.TwoColor && model.TwoColor)
}
