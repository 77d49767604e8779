package config

import "github.com/pgavlin/brotherql/internal/bitmap"

const (
	defaultConfigPath     = "~/.config/brotherql/config.toml"
	defaultLockDir        = "~/.cache/brotherql/locks"
	defaultCutEvery       = 1
	defaultPollIntervalMs = 200
	defaultPollBudgetMs   = 2000
	defaultReadTimeoutMs  = 1000
	defaultWriteTimeoutMs = 1000
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
	defaultServerBind     = "127.0.0.1:8631"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	opts := bitmap.DefaultOptions()
	return Config{
		Printer: Printer{
			LockDir: defaultLockDir,
		},
		Job: Job{
			Autocut:      true,
			CutEvery:     defaultCutEvery,
			Dither:       opts.Dither,
			DitherEngine: string(opts.Engine),
			Threshold:    opts.Threshold,
			Brightness:   opts.Brightness,
			RedTolerance: opts.RedTolerance,
		},
		Polling: Polling{
			IntervalMs:     defaultPollIntervalMs,
			BudgetMs:       defaultPollBudgetMs,
			ReadTimeoutMs:  defaultReadTimeoutMs,
			WriteTimeoutMs: defaultWriteTimeoutMs,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
	}
}
