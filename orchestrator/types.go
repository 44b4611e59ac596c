package orchestrator

import (
	"context"
	"time"

	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/features"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

// AngryScorer is the optional auxiliary image classifier.
type AngryScorer interface {
	AngryConfidence(ctx context.Context, image []byte) (float64, error)
}

// Tally counts accepted classifications per label.
type Tally map[classifier.Label]int

func (t Tally) Copy() Tally {
	out := make(Tally, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Session is the mutable state of one page session.
type Session struct {
	ID              string
	Started         time.Time
	LastEmotion     classifier.Label
	LastTriggerTime time.Time // zero until the first acceptance
	LastSpokenText  string
	LastSample      time.Time
	Tally           Tally
	History         []presentation.Entry // newest last
}

type Outcome int

const (
	OutcomeNotDue Outcome = iota
	OutcomeBusy
	OutcomeNoFace
	OutcomeSuppressed
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotDue:
		return "not_due"
	case OutcomeBusy:
		return "busy"
	case OutcomeNoFace:
		return "no_face"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeAccepted:
		return "accepted"
	}
	return "unknown"
}

// Result describes one sampling attempt. Label is the displayed label after
// the attempt: the new one when accepted, the retained one otherwise.
type Result struct {
	Outcome  Outcome
	Label    classifier.Label
	Features features.Vector
	Aux      classifier.Aux
	Render   *presentation.Render
	Spoken   bool
}
