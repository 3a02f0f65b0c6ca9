// Package logging owns the process-wide logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every component. Init configures it once at
// startup; before that it carries logrus defaults, which is fine for
// tests.
var Logger = logrus.New()

// Init sets up text logging to stderr at the level named by
// LOG_LEVEL (default info).
func Init(env string) {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level := logrus.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := logrus.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	if env == "dev" && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	Logger.SetLevel(level)
}
