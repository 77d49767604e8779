package bitmap

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/MaxHalford/halfgone"
	"github.com/makeworld-the-better-one/dither/v2"
)

// An Engine selects the error diffusion implementation used for the black plane.
type Engine string

const (
	// EngineExact is the palette Floyd-Steinberg ditherer of this package.
	EngineExact Engine = "exact"
	// EngineHalfgone is halfgone's grayscale Floyd-Steinberg ditherer.
	EngineHalfgone Engine = "halfgone"
	// EngineAtkinson is Atkinson error diffusion.
	EngineAtkinson Engine = "atkinson"
)

// Engines returns every supported engine.
func Engines() []Engine {
	return []Engine{EngineExact, EngineHalfgone, EngineAtkinson}
}

// ParseEngine parses an engine name. The empty string selects EngineExact.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineExact, nil
	case EngineExact, EngineHalfgone, EngineAtkinson:
		return e, nil
	default:
		return "", fmt.Errorf("unknown dither engine %q", s)
	}
}

var (
	monoPalette = []color.RGBA{Black, White}
	redPalette  = []color.RGBA{Red, White}
)

// ditherBlack dithers a grayscale image to black and white.
func (e Engine) ditherBlack(gray *image.RGBA) *image.RGBA {
	switch e {
	case EngineHalfgone:
		var floydSteinberg halfgone.FloydSteinbergDitherer
		return fromGray(floydSteinberg.Apply(halfgone.ImageToGray(gray)))
	case EngineAtkinson:
		d := dither.NewDitherer([]color.Color{Black, White})
		d.Matrix = dither.Atkinson
		return fromPaletted(d.DitherPaletted(gray))
	default:
		return Dither(gray, monoPalette)
	}
}

func fromGray(g *image.Gray) *image.RGBA {
	b := g.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := White
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y < 128 {
				c = Black
			}
			dst.SetRGBA(x, y, c)
		}
	}
	return dst
}

func fromPaletted(p *image.Paletted) *image.RGBA {
	b := p.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := White
			if p.ColorIndexAt(b.Min.X+x, b.Min.Y+y) == 0 {
				c = Black
			}
			dst.SetRGBA(x, y, c)
		}
	}
	return dst
}

// Options controls the conversion of a source image into a raster page.
type Options struct {
	// HighResolution halves the image width so a 600x600 dpi source prints at 300x600 dpi.
	HighResolution bool
	// Rotate is the clockwise rotation in degrees. Only multiples of 90 have an effect.
	Rotate int
	// Dither selects error diffusion. Otherwise pixels are thresholded.
	Dither bool
	// Engine is the black plane ditherer. The red plane always uses EngineExact.
	Engine Engine
	// Threshold is the cutoff in [0, 1] used when Dither is false. It applies to luminance on the black plane and
	// to the distance from saturated red on the red plane.
	Threshold float64
	// Brightness is applied to the black layer before dithering.
	Brightness float64
	// TwoColor separates red pixels onto a second plane.
	TwoColor bool
	// RedTolerance is the tolerance used to classify red pixels.
	RedTolerance int
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return Options{
		Dither:       true,
		Engine:       EngineExact,
		Threshold:    0.35,
		Brightness:   1.8,
		RedTolerance: DefaultRedTolerance,
	}
}

// Convert turns an image into a raster page. The source image is never modified.
//
// The image is flattened onto white, scaled for high resolution, rotated, and finally dithered or thresholded.
func Convert(img image.Image, opts Options) *Page {
	rgba := RemoveAlpha(img)
	if opts.HighResolution {
		b := rgba.Bounds()
		rgba = Scale(rgba, b.Dx()/2, b.Dy())
	}
	rgba = Rotate(rgba, opts.Rotate)

	if !opts.TwoColor {
		return NewPage(opts.black(rgba), false)
	}

	red, black := SplitRed(rgba, opts.RedTolerance)
	if opts.Dither {
		red = Dither(red, redPalette)
	} else {
		red = ThresholdRed(red, opts.Threshold)
	}
	return NewPage(Merge(opts.black(black), red), true)
}

func (opts Options) black(img *image.RGBA) *image.RGBA {
	if !opts.Dither {
		return Threshold(img, opts.Threshold, Black, White)
	}
	gray := Grayscale(img)
	if opts.Brightness > 0 && opts.Brightness != 1 {
		gray = Brightness(gray, opts.Brightness)
	}
	return opts.Engine.ditherBlack(gray)
}
