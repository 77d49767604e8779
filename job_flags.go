package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/config"
	"github.com/pgavlin/brotherql/internal/printer"
)

// jobFlags are the command-line overrides of the [job] configuration.
type jobFlags struct {
	media          string
	noCut          bool
	cutEvery       int
	feed           int
	delay          time.Duration
	noDither       bool
	engine         string
	threshold      float64
	brightness     float64
	rotate         int
	highResolution bool
	redTolerance   int
}

func (f *jobFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.media, "media", "m", "", "Loaded media, e.g. CT_62_720 (required for network and file printers)")
	flags.BoolVar(&f.noCut, "no-cut", false, "Do not cut between labels")
	flags.IntVar(&f.cutEvery, "cut-every", 1, "Cut after this many labels")
	flags.IntVar(&f.feed, "feed", 0, "Feed margin in dots, for models that support it")
	flags.DurationVar(&f.delay, "delay", 0, "Delay between pages")
	flags.BoolVar(&f.noDither, "no-dither", false, "Threshold pixels instead of dithering")
	flags.StringVar(&f.engine, "engine", "", "Dithering engine: exact, halfgone, or atkinson")
	flags.Float64Var(&f.threshold, "threshold", 0.35, "Luminance threshold used without dithering")
	flags.Float64Var(&f.brightness, "brightness", 1.8, "Brightness factor applied before dithering")
	flags.IntVar(&f.rotate, "rotate", 0, "Clockwise rotation in degrees")
	flags.BoolVar(&f.highResolution, "high-res", false, "Print at 300x600 dpi")
	flags.IntVar(&f.redTolerance, "red-tolerance", bitmap.DefaultRedTolerance, "Red detection tolerance on two-color media")
}

// job builds a job from the configured defaults and the flags set on the command line.
func (f *jobFlags) job(cmd *cobra.Command, cfg *config.Config) (*printer.Job, error) {
	job, err := cfg.NewJob()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("media") {
		m, ok := catalog.MediaByName(f.media)
		if !ok {
			return nil, fmt.Errorf("unknown media %q (see `brotherql media`)", f.media)
		}
		job.Media = &m
	}
	if changed("no-cut") {
		job.Autocut = !f.noCut
	}
	if changed("cut-every") {
		if f.cutEvery < 1 || f.cutEvery > 255 {
			return nil, fmt.Errorf("--cut-every must be between 1 and 255")
		}
		job.CutEvery = f.cutEvery
	}
	if changed("feed") {
		job.FeedAmount = f.feed
	}
	if changed("delay") {
		job.Delay = f.delay
	}
	if changed("no-dither") {
		job.Dither = !f.noDither
	}
	if changed("engine") {
		engine, err := bitmap.ParseEngine(f.engine)
		if err != nil {
			return nil, err
		}
		job.Engine = engine
	}
	if changed("threshold") {
		if f.threshold < 0 || f.threshold > 1 {
			return nil, fmt.Errorf("--threshold must be between 0 and 1")
		}
		job.Threshold = f.threshold
	}
	if changed("brightness") {
		job.Brightness = f.brightness
	}
	if changed("rotate") {
		if f.rotate%90 != 0 {
			return nil, fmt.Errorf("--rotate must be a multiple of 90")
		}
		job.Rotate = f.rotate
	}
	if changed("high-res") {
		job.HighResolution = f.highResolution
	}
	if changed("red-tolerance") {
		job.RedTolerance = f.redTolerance
	}
	return job, nil
}
