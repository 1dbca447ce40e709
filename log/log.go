package log

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Logger is a logrus entry tagged with the name of the module that owns it.
type Logger struct {
	*log.Entry
}

var base = newBase()

func newBase() *log.Logger {
	b := log.New()
	b.SetFormatter(&log.TextFormatter{
		DisableColors:    false,
		DisableTimestamp: false,
	})
	b.SetOutput(os.Stderr)
	b.SetLevel(log.WarnLevel)
	return b
}

func NewLogger(module string) *Logger {
	entry := base.WithFields(log.Fields{
		"name": module,
	})
	return &Logger{entry}
}

// SetLevel changes the level of every logger handed out by NewLogger.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	base.SetLevel(lvl)
	return nil
}

func SetOutput(w io.Writer) {
	base.SetOutput(w)
}
