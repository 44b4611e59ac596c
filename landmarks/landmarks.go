// Package landmarks holds face landmark frames as delivered by an external
// FaceMesh-style detector, and the plumbing that keeps the latest one around.
package landmarks

import (
	"errors"
	"time"
)

// FaceMesh indices consulted by the feature extractor.
// See https://github.com/google/mediapipe/blob/master/mediapipe/modules/face_geometry/data/canonical_face_model_uv_visualization.png
const (
	LeftEyeOuter = 33
	LeftEyeInner = 133

	UpperLidA = 159
	UpperLidB = 160
	UpperLidC = 161

	LowerLidA = 144
	LowerLidB = 145
	LowerLidC = 153

	BrowA = 65
	BrowB = 66
	BrowC = 70

	UpperInnerLip = 13
	LowerInnerLip = 14

	MouthLeft  = 61
	MouthRight = 291

	NumFaceMeshPoints = 468
	NumRefinedPoints  = 478
)

// ErrNoFace is returned when a frame carries no landmark set.
var ErrNoFace = errors.New("no face in frame")

// Point is a normalised image-space coordinate; y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Set is one face's landmarks indexed by anatomical position.
type Set []Point

// Frame is one processed camera frame.
type Frame struct {
	Captured time.Time
	Face     Set    // nil when the detector found no face
	Image    []byte // encoded frame for the auxiliary classifier, optional
}

// HasFace reports whether the frame carries a landmark set.
func (f Frame) HasFace() bool { return len(f.Face) > 0 }

// Provider hands out the most recent frame.
type Provider interface {
	Latest() (Frame, bool)
}

// DetectorOptions mirrors the settings the external detector is started with.
type DetectorOptions struct {
	MaxFaces               int     `json:"max_faces"`
	RefineLandmarks        bool    `json:"refine_landmarks"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
}

func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		MaxFaces:               1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}
