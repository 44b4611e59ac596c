// Package features reduces a landmark set to the four scalar signals the
// classifier works on.
package features

import (
	"errors"
	"fmt"

	"github.com/maastricht-university/emotion-feedback/landmarks"
)

// ErrMissingLandmarks is returned when a set lacks a required index.
var ErrMissingLandmarks = errors.New("missing landmarks")

var (
	upperLid = []int{landmarks.UpperLidA, landmarks.UpperLidB, landmarks.UpperLidC}
	lowerLid = []int{landmarks.LowerLidA, landmarks.LowerLidB, landmarks.LowerLidC}
	brow     = []int{landmarks.BrowA, landmarks.BrowB, landmarks.BrowC}
	eyeRef   = []int{landmarks.LeftEyeOuter, landmarks.LeftEyeInner}
	upperLip = []int{landmarks.UpperInnerLip}
	lowerLip = []int{landmarks.LowerInnerLip}
	corners  = []int{landmarks.MouthLeft, landmarks.MouthRight}
)

// Vector holds signed differences of normalised y coordinates.
type Vector struct {
	EyeOpen    float64 `json:"eye_open"`    // larger = more open
	BrowLift   float64 `json:"brow_lift"`   // larger = brow further above eye line
	MouthOpen  float64 `json:"mouth_open"`  // inner lip gap
	MouthSlope float64 `json:"mouth_slope"` // smaller = corners raised
}

// Extract computes the feature vector for one face.
func Extract(s landmarks.Set) (Vector, error) {
	if len(s) == 0 {
		return Vector{}, landmarks.ErrNoFace
	}
	if err := requireIndices(s); err != nil {
		return Vector{}, err
	}

	top := avgY(s, upperLip)
	return Vector{
		EyeOpen:    avgY(s, lowerLid) - avgY(s, upperLid),
		BrowLift:   avgY(s, eyeRef) - avgY(s, brow),
		MouthOpen:  avgY(s, lowerLip) - top,
		MouthSlope: avgY(s, corners) - top,
	}, nil
}

func requireIndices(s landmarks.Set) error {
	for _, group := range [][]int{upperLid, lowerLid, brow, eyeRef, upperLip, lowerLip, corners} {
		for _, i := range group {
			if i >= len(s) {
				return fmt.Errorf("index %d of %d points: %w", i, len(s), ErrMissingLandmarks)
			}
		}
	}
	return nil
}

func avgY(s landmarks.Set, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += s[i].Y
	}
	return sum / float64(len(idx))
}
