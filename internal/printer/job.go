package printer

import (
	"image"
	"time"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
)

// A Job describes a print job. SendJob neither modifies the job nor its images.
type Job struct {
	// ID identifies the job in logs. SendJob assigns a random id to jobs without one.
	ID string

	// Images are the pages of the job, in print order.
	Images []image.Image

	// Autocut cuts the tape every CutEvery pages.
	Autocut  bool
	CutEvery int

	// FeedAmount is the feed margin in dots, for models that accept one.
	FeedAmount int

	// Delay is the wait between two pages.
	Delay time.Duration

	// Dither selects error diffusion with Engine and Brightness. Otherwise pixels are thresholded with Threshold.
	Dither     bool
	Engine     bitmap.Engine
	Threshold  float64
	Brightness float64

	// Rotate is the clockwise rotation of every image in degrees.
	Rotate int

	// HighResolution prints at 300x600 dpi. Images must then be provided at 600x600 dpi.
	HighResolution bool

	// RedTolerance is used to classify red pixels on two-color media.
	RedTolerance int

	// Media is the loaded media. It is required for transports that cannot report it. A two-color
	// media is used instead of the reported one when both are the same stock.
	Media *catalog.Media
}

// NewJob returns a job printing the given images with the default settings.
func NewJob(images ...image.Image) *Job {
	opts := bitmap.DefaultOptions()
	return &Job{
		Images:       images,
		Autocut:      true,
		CutEvery:     1,
		Dither:       opts.Dither,
		Engine:       opts.Engine,
		Threshold:    opts.Threshold,
		Brightness:   opts.Brightness,
		RedTolerance: opts.RedTolerance,
	}
}

// Options returns the image conversion options of the job.
func (j *Job) Options(twoColor bool) bitmap.Options {
	return bitmap.Options{
		HighResolution: j.HighResolution,
		Rotate:         j.Rotate,
		Dither:         j.Dither,
		Engine:         j.Engine,
		Threshold:      j.Threshold,
		Brightness:     j.Brightness,
		TwoColor:       twoColor,
		RedTolerance:   j.RedTolerance,
	}
}

// Raster converts the images of the job into raster pages exactly as SendJob does.
func Raster(j *Job, twoColor bool) []*bitmap.Page {
	opts := j.Options(twoColor)
	pages := make([]*bitmap.Page, len(j.Images))
	for i, img := range j.Images {
		pages[i] = bitmap.Convert(img, opts)
	}
	return pages
}

// Bounds of Job.CutEvery. The printer receives the count as one byte.
const (
	minCutEvery = 1
	maxCutEvery = 255
)

// checkJob validates converted pages against the model and media.
func checkJob(j *Job, model catalog.Model, media catalog.Media, pages []*bitmap.Page) error {
	if j.HighResolution && !model.HighResolution {
		return newError(ErrUnsupportedHighResolution, -1)
	}
	if j.Autocut && (j.CutEvery < minCutEvery || j.CutEvery > maxCutEvery) {
		e := newError(ErrInvalidCutCount, -1)
		e.Actual, e.Min, e.Max = j.CutEvery, minCutEvery, maxCutEvery
		return e
	}

	width, height := pages[0].Width(), pages[0].Height()
	if width != media.BodyWidthPx {
		e := newError(ErrImageWidthMismatch, 0)
		e.Expected, e.Actual = media.BodyWidthPx, width
		return e
	}

	if media.Type == catalog.Continuous {
		if height < model.ContinuousMinPx || height > model.ContinuousMaxPx {
			e := newError(ErrImageHeightOutOfRange, 0)
			e.Actual, e.Min, e.Max = height, model.ContinuousMinPx, model.ContinuousMaxPx
			return e
		}
	} else {
		expected := media.BodyLengthPx
		if j.HighResolution {
			expected *= 2
		}
		if height != expected {
			e := newError(ErrImageHeightMismatch, 0)
			e.Expected, e.Actual = expected, height
			return e
		}
	}

	for i, p := range pages {
		if p.Width() != width || p.Height() != height {
			return newError(ErrImagesVaryInSize, i)
		}
	}
	return nil
}
