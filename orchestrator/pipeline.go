package orchestrator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-feedback/classifier"
	cfg "github.com/maastricht-university/emotion-feedback/config"
	"github.com/maastricht-university/emotion-feedback/features"
	"github.com/maastricht-university/emotion-feedback/landmarks"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

// Deps are the external collaborators. Aux, Player and Speaker may be nil.
type Deps struct {
	Provider landmarks.Provider
	Aux      AngryScorer
	Sink     presentation.Sink
	Player   *presentation.Player
	Speaker  presentation.Speaker
	Log      logrus.FieldLogger
	Rand     *rand.Rand
	Now      func() time.Time
}

type feedback struct {
	speech   bool
	lowPower bool
	lang     string
	tick     time.Duration
}

type Pipeline struct {
	deps    Deps
	log     logrus.FieldLogger
	clf     *classifier.Classifier
	sched   *Scheduler
	catalog presentation.Catalog

	mu     sync.RWMutex
	fb     feedback
	retick chan struct{}

	detecting atomic.Bool
	wg        sync.WaitGroup
}

func NewPipeline(c *cfg.Root, d Deps) *Pipeline {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(d.Now().UnixNano()))
	}
	if d.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		d.Log = l
	}
	id := uuid.NewString()
	p := &Pipeline{
		deps:    d,
		log:     d.Log.WithFields(logrus.Fields{"component": "pipeline", "session": id}),
		clf:     classifier.New(c.Thresholds()),
		sched:   NewScheduler(gateOf(c), id, d.Now()),
		catalog: c.Catalog(),
		fb:      feedbackOf(c),
		retick:  make(chan struct{}, 1),
	}
	return p
}

func gateOf(c *cfg.Root) Gate {
	return Gate{
		UpdateInterval: cfg.DurMillis(c.Sampling.UpdateIntervalMs),
		Cooldown:       cfg.DurMillis(c.Sampling.CooldownMs),
	}
}

func feedbackOf(c *cfg.Root) feedback {
	return feedback{
		speech:   c.Feedback.SpeechEnabled,
		lowPower: c.Feedback.LowPowerMode,
		lang:     c.Feedback.Language,
		tick:     cfg.DurMillis(c.Sampling.TickIntervalMs),
	}
}

// Apply swaps thresholds, gating windows, feedback switches and the tick
// interval in place. Session state is kept.
func (p *Pipeline) Apply(c *cfg.Root) {
	p.clf.SetThresholds(c.Thresholds())
	p.sched.SetGate(gateOf(c))
	p.mu.Lock()
	changed := p.fb.tick != cfg.DurMillis(c.Sampling.TickIntervalMs)
	p.fb = feedbackOf(c)
	p.mu.Unlock()
	if changed {
		select {
		case p.retick <- struct{}{}:
		default:
		}
	}
	p.log.WithFields(logrus.Fields{
		"update_interval_ms": c.Sampling.UpdateIntervalMs,
		"cooldown_ms":        c.Sampling.CooldownMs,
		"tick_interval_ms":   c.Sampling.TickIntervalMs,
		"low_power":          c.Feedback.LowPowerMode,
	}).Info("config applied")
}

func (p *Pipeline) feedback() feedback {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fb
}

func (p *Pipeline) SessionID() string { return p.sched.ID() }

func (p *Pipeline) Snapshot() Session { return p.sched.Snapshot() }

// Run ticks at the tick interval and starts one attempt per tick until ctx
// is done. Attempts that find another one pending return immediately.
func (p *Pipeline) Run(ctx context.Context) error {
	t := time.NewTicker(p.feedback().tick)
	defer t.Stop()
	p.log.Info("pipeline started")

	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			if p.deps.Player != nil {
				p.deps.Player.Stop()
			}
			p.log.Info("pipeline stopped")
			return nil
		case <-p.retick:
			t.Reset(p.feedback().tick)
		case <-t.C:
			now := p.deps.Now()
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				p.Tick(ctx, now)
			}()
		}
	}
}

// Tick runs one sampling attempt at now.
func (p *Pipeline) Tick(ctx context.Context, now time.Time) Result {
	if !p.detecting.CompareAndSwap(false, true) {
		return Result{Outcome: OutcomeBusy, Label: p.sched.Current()}
	}
	defer p.detecting.Store(false)

	if !p.sched.Due(now) {
		return Result{Outcome: OutcomeNotDue, Label: p.sched.Current()}
	}
	p.sched.MarkSampled(now)

	var frame landmarks.Frame
	if p.deps.Provider != nil {
		frame, _ = p.deps.Provider.Latest()
	}
	aux := p.score(ctx, frame)

	res := Result{Aux: aux}
	v, err := features.Extract(frame.Face)
	if err != nil {
		l, ok := p.clf.ClassifyAux(aux)
		if !ok {
			p.log.WithError(err).Debug("no usable face, holding display")
			return Result{Outcome: OutcomeNoFace, Label: p.sched.Current(), Aux: aux}
		}
		res.Label = l
	} else {
		res.Features = v
		res.Label = p.clf.Classify(v, aux)
	}

	tally, ok := p.sched.Offer(res.Label, now)
	if !ok {
		p.log.WithField("emotion", res.Label.String()).Debug("repeat within cooldown")
		res.Outcome = OutcomeSuppressed
		return res
	}
	res.Outcome = OutcomeAccepted
	res.Render, res.Spoken = p.present(ctx, res.Label, tally, now)
	return res
}

func (p *Pipeline) score(ctx context.Context, f landmarks.Frame) classifier.Aux {
	if p.deps.Aux == nil || len(f.Image) == 0 {
		return classifier.NoAux
	}
	conf, err := p.deps.Aux.AngryConfidence(ctx, f.Image)
	if err != nil {
		p.log.WithError(err).Debug("auxiliary classifier skipped")
		return classifier.NoAux
	}
	return classifier.Aux{Available: true, Angry: conf}
}

func (p *Pipeline) present(ctx context.Context, l classifier.Label, tally Tally, now time.Time) (*presentation.Render, bool) {
	fb := p.feedback()
	style := p.catalog.Style(l)
	text, clip := p.catalog.Pick(l, p.deps.Rand)

	speak := fb.speech && !fb.lowPower && p.sched.ClaimSpeech(text)

	entry := presentation.Entry{At: now, Label: l, Emoji: style.Emoji, Text: text, Color: style.HistoryColor}
	p.sched.AddHistory(entry)

	r := &presentation.Render{
		SessionID:  p.sched.ID(),
		Label:      l,
		Emoji:      style.Emoji,
		Suggestion: text,
		Background: style.Background,
		Entry:      entry,
		Tally:      tally,
		Talking:    speak && clip != "",
	}
	if p.deps.Sink != nil {
		if err := p.deps.Sink.Render(ctx, *r); err != nil {
			p.log.WithError(err).Warn("render failed")
		}
	}
	p.log.WithFields(logrus.Fields{"emotion": l.String(), "count": tally[l]}).Info("emotion accepted")

	if speak {
		p.voice(ctx, text, clip, fb.lang)
	}
	return r, speak
}

// voice interrupts whatever is playing, then plays the clip and speaks text.
// Failures are logged and dropped.
func (p *Pipeline) voice(ctx context.Context, text, clip, lang string) {
	if p.deps.Player != nil && clip != "" {
		if err := p.deps.Player.Play(ctx, clip); err != nil {
			p.logPlayback(err)
		}
	}
	if p.deps.Speaker != nil {
		p.deps.Speaker.Cancel()
		if err := p.deps.Speaker.Speak(ctx, text, lang); err != nil {
			p.logPlayback(err)
		}
	}
}

func (p *Pipeline) logPlayback(err error) {
	entry := p.log.WithError(err)
	if errors.Is(err, context.Canceled) {
		entry.Debug("playback cancelled")
		return
	}
	entry.Warn("playback failed")
}
