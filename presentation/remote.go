package presentation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-feedback/clients"
)

const stopTimeout = 2 * time.Second

// RemoteSink posts renders and tally charts to a display service.
type RemoteSink struct {
	h   *clients.HTTP
	url string
}

func NewRemoteSink(h *clients.HTTP, url string) *RemoteSink {
	return &RemoteSink{h: h, url: url}
}

func (s *RemoteSink) Render(ctx context.Context, r Render) error {
	_, err := s.h.Render(ctx, s.url, clients.RenderReq{
		SessionID:  r.SessionID,
		Label:      r.Label.String(),
		Emoji:      r.Emoji,
		Suggestion: r.Suggestion,
		Background: r.Background,
		History: clients.HistoryItem{
			At:    r.Entry.At,
			Emoji: r.Entry.Emoji,
			Text:  r.Entry.Text,
			Color: r.Entry.Color,
		},
		Talking: r.Talking,
	})
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(r.Tally))
	for l, n := range r.Tally {
		counts[l.String()] = n
	}
	_, err = s.h.Chart(ctx, s.url, clients.ChartReq{SessionID: r.SessionID, Counts: counts})
	return err
}

// RemoteBackend plays clips through a voice service.
type RemoteBackend struct {
	h   *clients.HTTP
	url string
	log logrus.FieldLogger
}

func NewRemoteBackend(h *clients.HTTP, url string, log logrus.FieldLogger) *RemoteBackend {
	return &RemoteBackend{h: h, url: url, log: log.WithField("component", "audio")}
}

func (b *RemoteBackend) Play(ctx context.Context, clip string) (Handle, error) {
	out, err := b.h.Play(ctx, b.url, clip)
	if err != nil {
		return nil, err
	}
	return &remoteHandle{b: b, id: out.Handle}, nil
}

type remoteHandle struct {
	b  *RemoteBackend
	id string
}

func (h *remoteHandle) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := h.b.h.StopPlayback(ctx, h.b.url, h.id); err != nil {
		h.b.log.WithError(err).WithField("handle", h.id).Debug("stop failed")
	}
}

// RemoteSpeaker sends utterances to a voice service.
type RemoteSpeaker struct {
	h   *clients.HTTP
	url string
	log logrus.FieldLogger
}

func NewRemoteSpeaker(h *clients.HTTP, url string, log logrus.FieldLogger) *RemoteSpeaker {
	return &RemoteSpeaker{h: h, url: url, log: log.WithField("component", "speech")}
}

func (s *RemoteSpeaker) Speak(ctx context.Context, text, lang string) error {
	if err := s.h.Speak(ctx, s.url, clients.SpeakReq{Text: text, Lang: lang}); err != nil {
		return fmt.Errorf("%w: speak: %w", ErrPlayback, err)
	}
	return nil
}

func (s *RemoteSpeaker) Cancel() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.h.CancelSpeech(ctx, s.url); err != nil {
		s.log.WithError(err).Debug("cancel failed")
	}
}
