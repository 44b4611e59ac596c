package landmarks

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Record is one line of a JSONL landmark recording.
type Record struct {
	AtMs   int64   `json:"at_ms"`
	Points []Point `json:"points"`
	Image  string  `json:"image,omitempty"`
}

// ReplayOptions controls pacing and image resolution for Replay.
type ReplayOptions struct {
	Speed   float64 // <= 0 disables pacing
	BaseDir string  // image paths are resolved against it
}

// Replay reads a JSONL recording and sends its frames to out, paced by at_ms.
// out is closed when the recording ends or ctx is done.
func Replay(ctx context.Context, r io.Reader, out chan<- Frame, opts ReplayOptions) error {
	defer close(out)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	start := time.Now()
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("replay line %d: %w", line, err)
		}

		if opts.Speed > 0 {
			due := start.Add(time.Duration(float64(rec.AtMs)/opts.Speed) * time.Millisecond)
			if wait := time.Until(due); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}

		f := Frame{Captured: time.Now()}
		if len(rec.Points) > 0 {
			f.Face = Set(rec.Points)
		}
		if rec.Image != "" {
			p := rec.Image
			if !filepath.IsAbs(p) {
				p = filepath.Join(opts.BaseDir, p)
			}
			img, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("replay line %d: %w", line, err)
			}
			f.Image = img
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- f:
		}
	}
	return sc.Err()
}
