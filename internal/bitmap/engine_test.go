package bitmap

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestParseEngine(t *testing.T) {
	for _, e := range Engines() {
		got, err := ParseEngine(string(e))
		if err != nil || got != e {
			t.Errorf("ParseEngine(%q) = %v, %v", e, got, err)
		}
	}
	if got, err := ParseEngine(""); err != nil || got != EngineExact {
		t.Errorf("ParseEngine(\"\") = %v, %v", got, err)
	}
	if _, err := ParseEngine("bayer"); err == nil {
		t.Error("ParseEngine(bayer) succeeded")
	}
}

func TestConvertMono(t *testing.T) {
	img := solid(8, 4, color.White)
	img.Set(0, 0, color.Black)
	img.Set(7, 3, color.NRGBA{0, 0, 0, 0})

	for _, dither := range []bool{true, false} {
		opts := DefaultOptions()
		opts.Dither = dither

		page := Convert(img, opts)
		if page.Width() != 8 || page.Height() != 4 {
			t.Fatalf("page is %dx%d; want 8x4", page.Width(), page.Height())
		}
		if page.TwoColor() {
			t.Error("mono page has a red plane")
		}
		if n := page.Black.Count(); n != 1 || !page.Black.BitAt(0, 0) {
			t.Errorf("dither=%v: black plane has %d dots", dither, n)
		}
	}
}

func TestConvertDoesNotModifySource(t *testing.T) {
	img := solid(4, 4, color.NRGBA{0x80, 0x80, 0x80, 0x80})
	Convert(img, DefaultOptions())
	if c := img.NRGBAAt(1, 1); c != (color.NRGBA{0x80, 0x80, 0x80, 0x80}) {
		t.Errorf("source pixel changed to %v", c)
	}
}

func TestConvertHighResolution(t *testing.T) {
	opts := DefaultOptions()
	opts.HighResolution = true
	page := Convert(solid(20, 6, color.Black), opts)
	if page.Width() != 10 || page.Height() != 6 {
		t.Errorf("page is %dx%d; want 10x6", page.Width(), page.Height())
	}
}

func TestConvertRotate(t *testing.T) {
	opts := DefaultOptions()
	opts.Rotate = 90
	page := Convert(solid(20, 6, color.Black), opts)
	if page.Width() != 6 || page.Height() != 20 {
		t.Errorf("page is %dx%d; want 6x20", page.Width(), page.Height())
	}
}

func TestConvertTwoColor(t *testing.T) {
	img := solid(3, 1, color.White)
	img.Set(0, 0, Red)
	img.Set(1, 0, Black)

	for _, dither := range []bool{true, false} {
		opts := DefaultOptions()
		opts.TwoColor = true
		opts.Dither = dither
		page := Convert(img, opts)
		if !page.TwoColor() {
			t.Fatal("two-color page has no red plane")
		}
		if !page.Red.BitAt(0, 0) || page.Red.Count() != 1 {
			t.Errorf("dither=%v: unexpected red plane", dither)
		}
		if !page.Black.BitAt(1, 0) || page.Black.Count() != 1 {
			t.Errorf("dither=%v: unexpected black plane", dither)
		}
		out := page.Image()
		if out.RGBAAt(0, 0) != Red || out.RGBAAt(1, 0) != Black || out.RGBAAt(2, 0) != White {
			t.Errorf("dither=%v: unexpected composed image", dither)
		}
	}
}

func TestConvertTwoColorThresholdKeepsSaturatedRed(t *testing.T) {
	for _, threshold := range []float64{0.05, 0.2, 0.29, 0.35, 0.9} {
		opts := DefaultOptions()
		opts.TwoColor = true
		opts.Dither = false
		opts.Threshold = threshold
		page := Convert(solid(4, 4, Red), opts)
		if n := page.Red.Count(); n != 16 {
			t.Errorf("threshold=%v: %d red dots; want 16", threshold, n)
		}
		if n := page.Black.Count(); n != 0 {
			t.Errorf("threshold=%v: %d black dots; want 0", threshold, n)
		}
	}
}

func TestThresholdRed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, Red)
	img.SetRGBA(1, 0, color.RGBA{0xFF, 0xC0, 0xC0, 0xFF})
	img.SetRGBA(2, 0, White)

	out := ThresholdRed(img, 0.5)
	if out.RGBAAt(0, 0) != Red || out.RGBAAt(1, 0) != White || out.RGBAAt(2, 0) != White {
		t.Errorf("unexpected threshold at 0.5: %v %v %v", out.RGBAAt(0, 0), out.RGBAAt(1, 0), out.RGBAAt(2, 0))
	}
	out = ThresholdRed(img, 0.9)
	if out.RGBAAt(1, 0) != Red || out.RGBAAt(2, 0) != White {
		t.Errorf("light red should ink at 0.9")
	}
	if out = ThresholdRed(img, 0); count(out, Red) != 0 {
		t.Errorf("threshold 0 inks %d pixels", count(out, Red))
	}
}

func TestEnginesProduceMonoPlanes(t *testing.T) {
	img := noise(24, 24, 6)
	for _, e := range Engines() {
		t.Run(string(e), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Engine = e
			page := Convert(img, opts)
			if page.Width() != 24 || page.Height() != 24 {
				t.Fatalf("page is %dx%d", page.Width(), page.Height())
			}
			black := Convert(solid(24, 24, color.Black), Options{Dither: true, Engine: e, Brightness: 1})
			if n := black.Black.Count(); n != 24*24 {
				t.Errorf("solid black dithers to %d dots", n)
			}
			white := Convert(solid(24, 24, color.White), Options{Dither: true, Engine: e, Brightness: 1})
			if n := white.Black.Count(); n != 0 {
				t.Errorf("solid white dithers to %d dots", n)
			}
		})
	}
}

func TestPlane(t *testing.T) {
	p := NewPlane(Black, 3, 2)
	p.SetBit(2, 1, true)
	p.SetBit(5, 5, true)
	if !p.BitAt(2, 1) || p.BitAt(0, 0) || p.BitAt(-1, 0) || p.BitAt(3, 0) {
		t.Error("unexpected bits")
	}
	if p.At(2, 1) != Black || p.At(0, 0) != White {
		t.Error("unexpected colors")
	}
	if p.Bounds() != image.Rect(0, 0, 3, 2) || p.Count() != 1 {
		t.Error("unexpected bounds or count")
	}
}
