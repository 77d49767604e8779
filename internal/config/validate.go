package config

import (
	"errors"
	"fmt"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePrinter(); err != nil {
		return err
	}
	if err := c.validateJob(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePrinter() error {
	if c.Printer.Media != "" {
		if _, ok := catalog.MediaByName(c.Printer.Media); !ok {
			return fmt.Errorf("printer.media %q is not a known media", c.Printer.Media)
		}
	}
	if c.Printer.Model != "" && !catalog.ModelByName(c.Printer.Model).Known() {
		return fmt.Errorf("printer.model %q is not a known model", c.Printer.Model)
	}
	return nil
}

func (c *Config) validateJob() error {
	j := c.Job
	if j.Threshold < 0 || j.Threshold > 1 {
		return errors.New("job.threshold must be between 0 and 1")
	}
	if j.Brightness <= 0 {
		return errors.New("job.brightness must be positive")
	}
	if j.CutEvery < 1 || j.CutEvery > 255 {
		return errors.New("job.cut_every must be between 1 and 255")
	}
	if j.FeedAmount < 0 || j.FeedAmount > 0xFFFF {
		return errors.New("job.feed_amount must be between 0 and 65535")
	}
	if j.DelayMs < 0 {
		return errors.New("job.delay_ms must not be negative")
	}
	if j.Rotate%90 != 0 {
		return errors.New("job.rotate must be a multiple of 90")
	}
	if j.RedTolerance < 0 || j.RedTolerance > 255 {
		return errors.New("job.red_tolerance must be between 0 and 255")
	}
	if _, err := bitmap.ParseEngine(j.DitherEngine); err != nil {
		return fmt.Errorf("job.dither_engine: %w", err)
	}
	return nil
}

func (c *Config) validatePolling() error {
	p := c.Polling
	switch {
	case p.IntervalMs <= 0:
		return errors.New("polling.interval_ms must be positive")
	case p.BudgetMs <= 0:
		return errors.New("polling.budget_ms must be positive")
	case p.ReadTimeoutMs <= 0:
		return errors.New("polling.read_timeout_ms must be positive")
	case p.WriteTimeoutMs <= 0:
		return errors.New("polling.write_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "", "auto", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format %q must be auto, console, or json", c.Logging.Format)
	}
}
