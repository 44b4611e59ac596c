package presentation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrPlayback wraps any audio or speech failure. Callers log it and move on.
var ErrPlayback = errors.New("playback failed")

// Handle is a clip that is currently playing.
type Handle interface {
	Stop()
}

// Backend starts clip playback.
type Backend interface {
	Play(ctx context.Context, clip string) (Handle, error)
}

// Player owns the single current audio handle. Starting a clip stops the
// previous one first; there is no queue.
type Player struct {
	backend Backend

	mu      sync.Mutex
	current Handle
}

func NewPlayer(b Backend) *Player {
	return &Player{backend: b}
}

func (p *Player) Play(ctx context.Context, clip string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.Stop()
		p.current = nil
	}
	h, err := p.backend.Play(ctx, clip)
	if err != nil {
		return fmt.Errorf("%w: clip %s: %w", ErrPlayback, clip, err)
	}
	p.current = h
	return nil
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Stop()
		p.current = nil
	}
}

// Playing reports whether a handle is held.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// LogBackend pretends to play clips and logs them.
type LogBackend struct {
	log logrus.FieldLogger
}

func NewLogBackend(log logrus.FieldLogger) *LogBackend {
	return &LogBackend{log: log.WithField("component", "audio")}
}

func (b *LogBackend) Play(_ context.Context, clip string) (Handle, error) {
	b.log.WithField("clip", clip).Debug("play")
	return logHandle{log: b.log, clip: clip}, nil
}

type logHandle struct {
	log  logrus.FieldLogger
	clip string
}

func (h logHandle) Stop() { h.log.WithField("clip", h.clip).Debug("stop") }
