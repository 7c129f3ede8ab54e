package pmolog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogConfig defines logging configuration options.
type LogConfig struct {
	Level     logrus.Level
	Output    io.Writer
	Formatter logrus.Formatter
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  logrus.InfoLevel,
		Output: os.Stderr,
		Formatter: &logrus.TextFormatter{
			ForceColors:   true,
			FullTimestamp: true,
		},
	}
}

// ParseLevel returns the configured level, falling back to info.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("❌ unknown log level %q, using info", level)
		return logrus.InfoLevel
	}
	return lvl
}

// Setup configures the standard logrus logger.
func Setup(cfg LogConfig) {
	logger := logrus.StandardLogger()
	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	}
	if cfg.Formatter != nil {
		logger.SetFormatter(cfg.Formatter)
	}
	logger.SetLevel(cfg.Level)
}
