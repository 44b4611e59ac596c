package orchestrator

import (
	"sync"
	"time"

	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

const maxHistory = 200

// Gate holds the two gating windows.
type Gate struct {
	UpdateInterval time.Duration // minimum time between samples
	Cooldown       time.Duration // minimum time before the same label is re-accepted
}

type State int

const (
	StateIdle State = iota
	StateAwaitingNextSample
)

// Scheduler decides when to sample and whether a classification is shown.
type Scheduler struct {
	mu   sync.Mutex
	gate Gate
	s    Session
}

func NewScheduler(g Gate, id string, started time.Time) *Scheduler {
	return &Scheduler{
		gate: g,
		s: Session{
			ID:      id,
			Started: started,
			Tally:   Tally{},
		},
	}
}

// ID is the session ID; it never changes.
func (s *Scheduler) ID() string { return s.s.ID }

func (s *Scheduler) SetGate(g Gate) {
	s.mu.Lock()
	s.gate = g
	s.mu.Unlock()
}

func (s *Scheduler) Gate() Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// Due reports whether more than UpdateInterval has passed since the last sample.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due(now)
}

func (s *Scheduler) due(now time.Time) bool {
	return s.s.LastSample.IsZero() || now.Sub(s.s.LastSample) > s.gate.UpdateInterval
}

func (s *Scheduler) MarkSampled(now time.Time) {
	s.mu.Lock()
	s.s.LastSample = now
	s.mu.Unlock()
}

func (s *Scheduler) State(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.due(now) {
		return StateIdle
	}
	return StateAwaitingNextSample
}

// Offer accepts or suppresses a classification. A repeat of LastEmotion
// within Cooldown of LastTriggerTime leaves the session untouched.
// On acceptance it returns a copy of the updated tally.
func (s *Scheduler) Offer(l classifier.Label, now time.Time) (Tally, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.s.LastTriggerTime.IsZero() && l == s.s.LastEmotion && now.Sub(s.s.LastTriggerTime) < s.gate.Cooldown {
		return nil, false
	}
	s.s.LastEmotion = l
	s.s.LastTriggerTime = now
	s.s.Tally[l]++
	return s.s.Tally.Copy(), true
}

func (s *Scheduler) AddHistory(e presentation.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.History = append(s.s.History, e)
	if len(s.s.History) > maxHistory {
		s.s.History = s.s.History[len(s.s.History)-maxHistory:]
	}
}

// ClaimSpeech records text as spoken unless it was the last thing spoken.
func (s *Scheduler) ClaimSpeech(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == s.s.LastSpokenText {
		return false
	}
	s.s.LastSpokenText = text
	return true
}

// Current is the label on display; Neutral before anything is accepted.
func (s *Scheduler) Current() classifier.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.LastEmotion
}

func (s *Scheduler) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.s
	out.Tally = s.s.Tally.Copy()
	out.History = append([]presentation.Entry(nil), s.s.History...)
	return out
}
