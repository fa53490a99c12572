package bot

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("component", "bot")

// ConfigureLogging applies LOG_LEVEL to the standard logrus logger. Unknown
// levels fall back to info.
func ConfigureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
