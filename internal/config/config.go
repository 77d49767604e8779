// Package config loads the brotherql configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/printer"
)

//go:embed sample_config.toml
var sampleConfig string

// Printer selects the printer and the loaded media.
type Printer struct {
	// Address names the transport, e.g. "usb://Brother/QL-700" or "tcp://192.168.1.20/QL-720NW".
	Address string `toml:"address"`
	// Model overrides the model for transports that cannot detect it.
	Model string `toml:"model"`
	// Media is required for transports that cannot report the loaded media.
	Media   string `toml:"media"`
	LockDir string `toml:"lock_dir"`
}

// Job holds the default job settings.
type Job struct {
	Autocut        bool    `toml:"autocut"`
	CutEvery       int     `toml:"cut_every"`
	FeedAmount     int     `toml:"feed_amount"`
	DelayMs        int     `toml:"delay_ms"`
	Dither         bool    `toml:"dither"`
	DitherEngine   string  `toml:"dither_engine"`
	Threshold      float64 `toml:"threshold"`
	Brightness     float64 `toml:"brightness"`
	Rotate         int     `toml:"rotate"`
	HighResolution bool    `toml:"high_resolution"`
	RedTolerance   int     `toml:"red_tolerance"`
}

// Polling holds the status polling timings, in milliseconds.
type Polling struct {
	IntervalMs     int `toml:"interval_ms"`
	BudgetMs       int `toml:"budget_ms"`
	ReadTimeoutMs  int `toml:"read_timeout_ms"`
	WriteTimeoutMs int `toml:"write_timeout_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Server configures the HTTP print server.
type Server struct {
	Bind string `toml:"bind"`
}

// Config encapsulates all configuration values for brotherql.
type Config struct {
	Printer Printer `toml:"printer"`
	Job     Job     `toml:"job"`
	Polling Polling `toml:"polling"`
	Logging Logging `toml:"logging"`
	Server  Server  `toml:"server"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. An empty path selects the default location, falling
// back to ./brotherql.toml. A missing file yields the default configuration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("brotherql.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	c.Printer.Address = strings.TrimSpace(c.Printer.Address)
	c.Printer.Media = strings.TrimSpace(c.Printer.Media)
	if c.Printer.LockDir, err = expandPath(c.Printer.LockDir); err != nil {
		return fmt.Errorf("printer.lock_dir: %w", err)
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	c.Job.DitherEngine = strings.ToLower(strings.TrimSpace(c.Job.DitherEngine))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// MediaSpec returns the configured media, or nil if none is set.
func (c *Config) MediaSpec() (*catalog.Media, error) {
	if c.Printer.Media == "" {
		return nil, nil
	}
	m, ok := catalog.MediaByName(c.Printer.Media)
	if !ok {
		return nil, fmt.Errorf("unknown media %q", c.Printer.Media)
	}
	return &m, nil
}

// NewJob returns a job printing the given images with the configured defaults.
func (c *Config) NewJob() (*printer.Job, error) {
	engine, err := bitmap.ParseEngine(c.Job.DitherEngine)
	if err != nil {
		return nil, err
	}
	media, err := c.MediaSpec()
	if err != nil {
		return nil, err
	}
	return &printer.Job{
		Autocut:        c.Job.Autocut,
		CutEvery:       c.Job.CutEvery,
		FeedAmount:     c.Job.FeedAmount,
		Delay:          time.Duration(c.Job.DelayMs) * time.Millisecond,
		Dither:         c.Job.Dither,
		Engine:         engine,
		Threshold:      c.Job.Threshold,
		Brightness:     c.Job.Brightness,
		Rotate:         c.Job.Rotate,
		HighResolution: c.Job.HighResolution,
		RedTolerance:   c.Job.RedTolerance,
		Media:          media,
	}, nil
}

// PollPolicy returns the configured status polling policy.
func (c *Config) PollPolicy() printer.PollPolicy {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return printer.PollPolicy{
		Interval:     ms(c.Polling.IntervalMs),
		Budget:       ms(c.Polling.BudgetMs),
		ReadTimeout:  ms(c.Polling.ReadTimeoutMs),
		WriteTimeout: ms(c.Polling.WriteTimeoutMs),
	}
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath expands a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
