// Package detector defines the eye detection capability consumed by the
// daemon. The calibration core never sees images; it only gets the eye
// coordinates a Detector returns.
package detector

import (
	"context"
	"image"
	"sort"

	"github.com/charlie0129/acuity/pkg/calibration"
)

// EyePair is one detected face's eyes, Left having the smaller x.
type EyePair struct {
	Left  calibration.Point `json:"left"`
	Right calibration.Point `json:"right"`
	// Score ranks pairs from the same image; higher is more confident.
	Score float64 `json:"score"`
	// Face is the face bounding box the eyes were found in, if known.
	Face image.Rectangle `json:"face"`
}

// Observation converts the pair into the calibration input.
func (p EyePair) Observation() calibration.EyeObservation {
	return calibration.EyeObservation{Left: p.Left, Right: p.Right}
}

// Frame is the decoded image size, needed for field-of-view estimates.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is everything a detector found in one image.
type Result struct {
	Frame Frame     `json:"frame"`
	Pairs []EyePair `json:"pairs"`
}

// Detector finds eye landmark pairs in an encoded image (JPEG, PNG, ...).
// Finding nothing is not an error: Result.Pairs is simply empty.
type Detector interface {
	Detect(ctx context.Context, img []byte) (*Result, error)
	Close() error
}

// NewEyePair orders two eye centres left to right.
func NewEyePair(a, b calibration.Point, score float64, face image.Rectangle) EyePair {
	if b.X < a.X {
		a, b = b, a
	}
	return EyePair{Left: a, Right: b, Score: score, Face: face}
}

// Best returns the highest scoring pair, or false when there is none.
func Best(pairs []EyePair) (EyePair, bool) {
	if len(pairs) == 0 {
		return EyePair{}, false
	}
	sorted := append([]EyePair(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	return sorted[0], true
}
