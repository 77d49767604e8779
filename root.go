package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/config"
	"github.com/pgavlin/brotherql/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag, addressFlag, logLevelFlag string

	ctx := newCommandContext(&configFlag, &addressFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "brotherql",
		Short:         "Print on Brother QL label printers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&addressFlag, "printer", "p", "", "Printer address (overrides printer.address)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides logging.level)")

	rootCmd.AddCommand(newPrintCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newRasterCommand(ctx))
	rootCmd.AddCommand(newCodeCommand(ctx))
	rootCmd.AddCommand(newModelsCommand())
	rootCmd.AddCommand(newMediaCommand())
	rootCmd.AddCommand(newDiscoverCommand())
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

type commandContext struct {
	configFlag   *string
	addressFlag  *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, addressFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		addressFlag:  addressFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.addressFlag != nil && strings.TrimSpace(*c.addressFlag) != "" {
			cfg.Printer.Address = strings.TrimSpace(*c.addressFlag)
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
		if cfg.Logging.File != "" {
			opts.OutputPaths = []string{cfg.Logging.File}
		}
		logger, err := logging.New(opts)
		if err != nil {
			c.loggerErr = fmt.Errorf("create logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// station returns the station for the configured printer.
func (c *commandContext) station() (*station, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return newStation(cfg, logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
