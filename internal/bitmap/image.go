// Package bitmap converts images into the 1-bit raster pages printed by Brother QL printers.
package bitmap

import (
	"image"
	"image/color"
)

var (
	// Black is the ink color of the black plane.
	Black = color.RGBA{0, 0, 0, 0xff}
	// White is the color of unprinted dots.
	White = color.RGBA{0xff, 0xff, 0xff, 0xff}
	// Red is the ink color of the red plane.
	Red = color.RGBA{0xff, 0, 0, 0xff}
)

// A Plane is a 1-bit image. Set bits are inked dots.
type Plane struct {
	ink    color.RGBA
	width  int
	height int
	bits   []bool
}

// NewPlane creates an empty plane with the given ink color and size.
func NewPlane(ink color.RGBA, width, height int) *Plane {
	return &Plane{ink: ink, width: width, height: height, bits: make([]bool, width*height)}
}

// PlaneOf returns the plane of the pixels of img that are exactly the given ink color.
func PlaneOf(img *image.RGBA, ink color.RGBA) *Plane {
	b := img.Bounds()
	p := NewPlane(ink, b.Dx(), b.Dy())
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.bits[y*p.width+x] = img.RGBAAt(b.Min.X+x, b.Min.Y+y) == ink
		}
	}
	return p
}

// Ink returns the plane's ink color.
func (p *Plane) Ink() color.RGBA {
	return p.ink
}

// ColorModel returns the Plane's color model.
func (p *Plane) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds returns the domain for which At can return non-zero color. Planes always start at (0, 0).
func (p *Plane) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// At returns the color of the pixel at (x, y). Set bits return the ink color; unset bits return White.
func (p *Plane) At(x, y int) color.Color {
	if p.BitAt(x, y) {
		return p.ink
	}
	return White
}

// BitAt returns true if the bit at (x, y) is set and false if it is not. Out-of-bounds bits are unset.
func (p *Plane) BitAt(x, y int) bool {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return false
	}
	return p.bits[y*p.width+x]
}

// SetBit sets or clears the bit at (x, y).
func (p *Plane) SetBit(x, y int, v bool) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	p.bits[y*p.width+x] = v
}

// Count returns the number of set bits.
func (p *Plane) Count() int {
	n := 0
	for _, b := range p.bits {
		if b {
			n++
		}
	}
	return n
}

// A Page is a converted raster page: a black plane and, for two-color printing, a red plane of the same size.
type Page struct {
	Black *Plane
	Red   *Plane
}

// NewPage splits a converted image into its ink planes. The red plane is only extracted if twoColor is set.
func NewPage(img *image.RGBA, twoColor bool) *Page {
	page := &Page{Black: PlaneOf(img, Black)}
	if twoColor {
		page.Red = PlaneOf(img, Red)
	}
	return page
}

// Width returns the page width in dots.
func (p *Page) Width() int {
	return p.Black.width
}

// Height returns the page height in dots.
func (p *Page) Height() int {
	return p.Black.height
}

// TwoColor returns true if the page has a red plane.
func (p *Page) TwoColor() bool {
	return p.Red != nil
}

// Image renders the page as it will print, with red dots drawn over black ones.
func (p *Page) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width(), p.Height()))
	for y := 0; y < p.Height(); y++ {
		for x := 0; x < p.Width(); x++ {
			c := White
			switch {
			case p.Red != nil && p.Red.BitAt(x, y):
				c = Red
			case p.Black.BitAt(x, y):
				c = Black
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
