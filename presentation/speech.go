package presentation

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Speaker synthesises speech. Cancel drops any utterance in progress.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
	Cancel()
}

type LogSpeaker struct {
	log logrus.FieldLogger
}

func NewLogSpeaker(log logrus.FieldLogger) *LogSpeaker {
	return &LogSpeaker{log: log.WithField("component", "speech")}
}

func (s *LogSpeaker) Speak(_ context.Context, text, lang string) error {
	s.log.WithField("lang", lang).Debug(text)
	return nil
}

func (s *LogSpeaker) Cancel() {}
