package orchestrator

import (
	"github.com/maastricht-university/emotion-feedback/classifier"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

// Summary aggregates the accepted history of a session.
type Summary struct {
	Accepted int                          `json:"accepted"`
	Shares   map[classifier.Label]float64 `json:"shares"`
	Dominant classifier.Label             `json:"dominant"`
	Switches int                          `json:"switches"` // label changes between consecutive entries
}

func summarize(history []presentation.Entry) Summary {
	s := Summary{Shares: map[classifier.Label]float64{}}
	if len(history) == 0 {
		return s
	}
	counts := map[classifier.Label]int{}
	for i, e := range history {
		counts[e.Label]++
		if i > 0 && history[i-1].Label != e.Label {
			s.Switches++
		}
	}
	s.Accepted = len(history)

	// ties go to the earlier label in display order
	best := -1
	for _, l := range classifier.Labels() {
		n := counts[l]
		if n == 0 {
			continue
		}
		s.Shares[l] = float64(n) / float64(s.Accepted)
		if n > best {
			best = n
			s.Dominant = l
		}
	}
	return s
}
