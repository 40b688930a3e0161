package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/internal/config"
)

// Init configures the global logrus logger from the config. Diagnostic
// output goes to stderr so it never mixes with command output on stdout.
func Init(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using 'info' instead", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logrus.SetOutput(os.Stderr)
}
