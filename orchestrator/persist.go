package orchestrator

import (
	"encoding/json"
	"io"
	"time"

	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

// Report is the in-memory session written out at the end of a run.
type Report struct {
	SessionID   string               `json:"session_id"`
	StartedAt   time.Time            `json:"started_at"`
	GeneratedAt time.Time            `json:"generated_at"`
	Current     classifier.Label     `json:"current"`
	Tally       Tally                `json:"tally"`
	Summary     Summary              `json:"summary"`
	History     []presentation.Entry `json:"history"`
}

func (p *Pipeline) Report() Report {
	s := p.sched.Snapshot()
	return Report{
		SessionID:   s.ID,
		StartedAt:   s.Started,
		GeneratedAt: p.deps.Now(),
		Current:     s.LastEmotion,
		Tally:       s.Tally,
		Summary:     summarize(s.History),
		History:     s.History,
	}
}

// WriteReport encodes r as indented JSON.
func WriteReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
