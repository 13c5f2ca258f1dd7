package logger

import (
	"errors"
	"strings"
)

// Config is the logger section of the service configuration
type Config struct {
	Level      string     `mapstructure:"level"`  // debug, info, warn, error
	Format     string     `mapstructure:"format"` // json, console
	Output     string     `mapstructure:"output"` // console, file, both
	File       FileConfig `mapstructure:"file"`
	Stacktrace bool       `mapstructure:"stacktrace"` // attach stacktraces to error entries
}

// FileConfig controls the rotating file sink
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"` // MB
	MaxAge     int    `mapstructure:"maxage"`  // days
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

var validLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// DefaultConfig returns the console JSON logger used when nothing is configured
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		Output:     "console",
		Stacktrace: true,
		File: FileConfig{
			Filename:   "logs/world-explorer.log",
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

// Validate checks level, format, output and the file sink settings
func (c *Config) Validate() error {
	if _, ok := validLevels[strings.ToLower(c.Level)]; !ok {
		return errors.New("invalid log level, must be one of: debug, info, warn, error, dpanic, panic, fatal")
	}

	if c.Format != "json" && c.Format != "console" {
		return errors.New("invalid log format, must be 'json' or 'console'")
	}

	switch c.Output {
	case "console":
		return nil
	case "file", "both":
	default:
		return errors.New("invalid log output, must be 'console', 'file' or 'both'")
	}

	if c.File.Filename == "" {
		return errors.New("log file filename is required when output is 'file' or 'both'")
	}
	if c.File.MaxSize <= 0 {
		return errors.New("log file maxsize must be greater than 0")
	}
	if c.File.MaxAge <= 0 {
		return errors.New("log file maxage must be greater than 0")
	}
	if c.File.MaxBackups < 0 {
		return errors.New("log file maxbackups must be greater than or equal to 0")
	}
	return nil
}
