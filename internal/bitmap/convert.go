package bitmap

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Luminance returns round(0.299r + 0.587g + 0.114b) of the color's non-premultiplied channels.
func Luminance(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return luminance(n.R, n.G, n.B)
}

func luminance(r, g, b uint8) uint8 {
	return uint8(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// RemoveAlpha composites img over a white background. The result is opaque and its bounds start at (0, 0).
func RemoveAlpha(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// mapPixels returns a new image with f applied to every pixel of img.
func mapPixels(img *image.RGBA, f func(c color.RGBA) color.RGBA) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, f(img.RGBAAt(x, y)))
		}
	}
	return dst
}

// Brightness multiplies each channel by factor, truncating and clamping the result to [0, 255].
func Brightness(img *image.RGBA, factor float64) *image.RGBA {
	scale := func(v uint8) uint8 { return clamp(int(float64(v) * factor)) }
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
	})
}

// Grayscale replaces each pixel by its luminance.
func Grayscale(img *image.RGBA) *image.RGBA {
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		l := luminance(c.R, c.G, c.B)
		return color.RGBA{l, l, l, c.A}
	})
}

// Threshold maps each pixel to low if its luminance divided by 255 is below t and to high otherwise.
func Threshold(img *image.RGBA, t float64, low, high color.RGBA) *image.RGBA {
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		if float64(luminance(c.R, c.G, c.B))/255 < t {
			return low
		}
		return high
	})
}

// ThresholdRed maps the pixels of a red layer to red if their distance from red toward white, measured on the green
// channel, is below t and to white otherwise. Saturated red always inks for t > 0.
func ThresholdRed(img *image.RGBA, t float64) *image.RGBA {
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		if float64(c.G)/255 < t {
			return Red
		}
		return White
	})
}

type rgb [3]int

func (c rgb) distance(p color.RGBA) int {
	dr, dg, db := int(clamp(c[0]))-int(p.R), int(clamp(c[1]))-int(p.G), int(clamp(c[2]))-int(p.B)
	return dr*dr + dg*dg + db*db
}

// nearest returns the index of the palette color closest to c. Ties go to the earliest entry.
func nearest(c rgb, palette []color.RGBA) int {
	best, bestDist := 0, c.distance(palette[0])
	for i := 1; i < len(palette); i++ {
		if d := c.distance(palette[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Dither maps img onto palette with Floyd-Steinberg error diffusion.
//
// Accumulated values are only clamped when choosing a palette color. The propagated error is the difference between
// the unclamped value and the chosen color, and each propagated fraction is truncated toward zero. Pixels that are
// exactly a palette color map to themselves.
func Dither(img *image.RGBA, palette []color.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(b)
	if len(palette) == 0 {
		return dst
	}

	acc := make([]rgb, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			acc[y*w+x] = rgb{int(c.R), int(c.G), int(c.B)}
		}
	}

	spread := func(x, y int, e rgb, frac float64) {
		if x < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		for c := range e {
			acc[i][c] += int(float64(e[c]) * frac)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := acc[y*w+x]
			p := palette[nearest(old, palette)]
			dst.SetRGBA(b.Min.X+x, b.Min.Y+y, p)

			e := rgb{old[0] - int(p.R), old[1] - int(p.G), old[2] - int(p.B)}
			spread(x+1, y, e, 7.0/16)
			spread(x-1, y+1, e, 3.0/16)
			spread(x, y+1, e, 5.0/16)
			spread(x+1, y+1, e, 1.0/16)
		}
	}
	return dst
}

// Rotate rotates img clockwise by angle degrees. Angles are normalized to [0, 360); anything other than 90, 180, or
// 270 returns img unchanged.
func Rotate(img *image.RGBA, angle int) *image.RGBA {
	angle %= 360
	if angle < 0 {
		angle += 360
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	var to func(x, y int) (int, int)
	switch angle {
	case 90:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		to = func(x, y int) (int, int) { return h - 1 - y, x }
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		to = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 270:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		to = func(x, y int) (int, int) { return y, w - 1 - x }
	default:
		return img
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := to(x, y)
			dst.SetRGBA(dx, dy, img.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Scale resamples img to exactly width x height dots with bicubic interpolation.
func Scale(img image.Image, width, height int) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	scaled := resize.Resize(uint(width), uint(height), img, resize.Bicubic)

	sb := scaled.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(dst, dst.Bounds(), scaled, sb.Min, draw.Src)
	return dst
}

// DefaultRedTolerance is the default tolerance of IsRed.
const DefaultRedTolerance = 40

// IsRed returns true if c lies within tol of the red-to-white gradient: red at or near full intensity, green and
// blue close to each other and clearly below red.
func IsRed(c color.RGBA, tol int) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	d := g - b
	if d < 0 {
		d = -d
	}
	return r >= 255-tol && d <= tol && g < r-tol && b < r-tol
}

// SplitRed separates img into a red layer, holding the red pixels on white, and a black layer, holding every other
// pixel with the red ones whitened.
func SplitRed(img *image.RGBA, tol int) (red, black *image.RGBA) {
	b := img.Bounds()
	red, black = image.NewRGBA(b), image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if IsRed(c, tol) {
				red.SetRGBA(x, y, c)
				black.SetRGBA(x, y, White)
			} else {
				red.SetRGBA(x, y, White)
				black.SetRGBA(x, y, c)
			}
		}
	}
	return red, black
}

// Merge draws the non-white pixels of red over black. Both images must have the same bounds.
func Merge(black, red *image.RGBA) *image.RGBA {
	b := black.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := red.RGBAAt(x, y)
			if c == White {
				c = black.RGBAAt(x, y)
			}
			dst.SetRGBA(x, y, c)
		}
	}
	return dst
}
