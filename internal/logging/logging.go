// Package logging configures the structured JSON logger shared by every component.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger that writes one JSON object per line to w.
// Timestamps are rendered in loc under the "ts" key.
func New(w io.Writer, loc *time.Location) *logrus.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	})
	l.AddHook(locationHook{loc: loc})
	return l
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type locationHook struct {
	loc *time.Location
}

func (h locationHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h locationHook) Fire(e *logrus.Entry) error {
	e.Time = e.Time.In(h.loc)
	return nil
}
