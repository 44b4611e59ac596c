package presentation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-feedback/classifier"
)

// Entry is one line of the on-screen history log.
type Entry struct {
	At    time.Time        `json:"at"`
	Label classifier.Label `json:"label"`
	Emoji string           `json:"emoji"`
	Text  string           `json:"text"`
	Color string           `json:"color"`
}

// Render is everything the display needs after an accepted classification.
type Render struct {
	SessionID  string
	Label      classifier.Label
	Emoji      string
	Suggestion string
	Background string
	Entry      Entry
	Tally      map[classifier.Label]int
	Talking    bool
}

type Sink interface {
	Render(ctx context.Context, r Render) error
}

// LogSink writes renders to a logger.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log.WithField("component", "display")}
}

func (s *LogSink) Render(_ context.Context, r Render) error {
	f := logrus.Fields{
		"emotion":    r.Label.String(),
		"emoji":      r.Emoji,
		"background": r.Background,
	}
	for l, n := range r.Tally {
		f["tally_"+l.String()] = n
	}
	s.log.WithFields(f).Info(r.Suggestion)
	return nil
}

// MultiSink renders to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Render(ctx context.Context, r Render) error {
	var errs []error
	for _, s := range m {
		if err := s.Render(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
