package classifier

import (
	"sync"

	"github.com/maastricht-university/emotion-feedback/features"
)

// Thresholds are fractions of normalised image-space distances.
type Thresholds struct {
	AngryConfidence float64 // auxiliary angry probability must exceed this
	GeometricAngry  bool    // allow the geometric angry rule when no auxiliary result

	HappyMouthSlopeMax float64
	HappyBrowLiftMin   float64
	HappyEyeOpenMin    float64

	TiredEyeOpenMax   float64
	TiredMouthOpenMin float64

	AngryBrowLiftMax  float64
	AngryEyeOpenMax   float64
	AngryMouthOpenMax float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AngryConfidence:    0.8,
		GeometricAngry:     true,
		HappyMouthSlopeMax: 0.015,
		HappyBrowLiftMin:   0.005,
		HappyEyeOpenMin:    0.008,
		TiredEyeOpenMax:    0.005,
		TiredMouthOpenMin:  0.025,
		AngryBrowLiftMax:   0.002,
		AngryEyeOpenMax:    0.007,
		AngryMouthOpenMax:  0.01,
	}
}

// Aux is the auxiliary image classifier's output for one frame.
type Aux struct {
	Available bool
	Angry     float64
}

// NoAux is used when the auxiliary classifier is not loaded or failed.
var NoAux = Aux{}

// Classifier is safe for concurrent use; thresholds can be swapped at runtime.
type Classifier struct {
	mu sync.RWMutex
	th Thresholds
}

func New(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

func (c *Classifier) Thresholds() Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.th
}

func (c *Classifier) SetThresholds(th Thresholds) {
	c.mu.Lock()
	c.th = th
	c.mu.Unlock()
}

// Classify applies the rules in priority order; the first match wins.
func (c *Classifier) Classify(v features.Vector, aux Aux) Label {
	return Classify(c.Thresholds(), v, aux)
}

// ClassifyAux decides from the auxiliary result alone, for frames without a face.
func (c *Classifier) ClassifyAux(aux Aux) (Label, bool) {
	th := c.Thresholds()
	if aux.Available && aux.Angry > th.AngryConfidence {
		return Angry, true
	}
	return Neutral, false
}

func Classify(th Thresholds, v features.Vector, aux Aux) Label {
	if aux.Available && aux.Angry > th.AngryConfidence {
		return Angry
	}

	switch {
	case v.MouthSlope < th.HappyMouthSlopeMax && v.BrowLift > th.HappyBrowLiftMin && v.EyeOpen > th.HappyEyeOpenMin:
		return Happy
	case v.EyeOpen < th.TiredEyeOpenMax && v.MouthOpen > th.TiredMouthOpenMin:
		return Tired
	case !aux.Available && th.GeometricAngry &&
		v.BrowLift < th.AngryBrowLiftMax && v.EyeOpen < th.AngryEyeOpenMax && v.MouthOpen < th.AngryMouthOpenMax:
		return Angry
	}
	return Neutral
}
