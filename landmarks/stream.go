package landmarks

import (
	"context"
	"sync"
)

// Stream keeps only the latest frame received from a detector channel.
type Stream struct {
	in <-chan Frame

	mu     sync.RWMutex
	latest Frame
	seen   bool
	frames int
}

func NewStream(in <-chan Frame) *Stream {
	return &Stream{in: in}
}

// Run drains the input channel until it is closed or ctx is done.
func (s *Stream) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-s.in:
			if !ok {
				return
			}
			s.Push(f)
		}
	}
}

// Push replaces the latest frame. A no-face frame also replaces it.
func (s *Stream) Push(f Frame) {
	s.mu.Lock()
	s.latest = f
	s.seen = true
	s.frames++
	s.mu.Unlock()
}

func (s *Stream) Latest() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.seen
}

// Frames is the number of frames received so far.
func (s *Stream) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}
