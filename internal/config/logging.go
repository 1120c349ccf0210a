package config

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger from the logging configuration.
// Unknown levels fall back to warn rather than failing startup.
func NewLogger(cfg LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return log
}
