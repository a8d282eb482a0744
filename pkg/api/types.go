// Package api holds the JSON contracts between the acuity daemon and its
// clients.
package api

import (
	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/chart"
	"github.com/charlie0129/acuity/pkg/detector"
)

// ErrorResponse is the body of every non-2xx daemon response.
type ErrorResponse struct {
	Kind    calibration.Kind `json:"kind,omitempty"`
	Message string           `json:"message"`
}

// CardRequest measures the screen with a reference card. Card overrides the
// configured card size.
type CardRequest struct {
	calibration.CardMeasurement
	Card *calibration.CardSpec `json:"card,omitempty"`
}

// FocalLengthRequest calibrates the camera from one observation taken at a
// known distance. A zero RealIPDMM uses the configured IPD.
type FocalLengthRequest struct {
	Observation         calibration.EyeObservation `json:"observation"`
	ReferenceDistanceMM float64                    `json:"referenceDistanceMM"`
	RealIPDMM           float64                    `json:"realIPDMM,omitempty"`
}

// SnapshotResult is the outcome of running the detector on an uploaded
// image. Distance and FieldOfView are only set once the focal length is
// calibrated. FocalLengthPx is set when the snapshot itself calibrated it.
type SnapshotResult struct {
	Frame         detector.Frame                   `json:"frame"`
	Pairs         int                              `json:"pairs"`
	Pair          detector.EyePair                 `json:"pair"`
	IPDPx         float64                          `json:"ipdPx"`
	FocalLengthPx float64                          `json:"focalLengthPx,omitempty"`
	Distance      *calibration.DistanceMeasurement `json:"distance,omitempty"`
	FieldOfView   *calibration.FieldOfView         `json:"fieldOfView,omitempty"`
}

// ChartResult is the size of a single acuity line.
type ChartResult struct {
	Acuity            chart.Acuity `json:"acuity"`
	Style             chart.Style  `json:"style"`
	ViewingDistanceMM float64      `json:"viewingDistanceMM"`
	PPMScreen         float64      `json:"ppmScreen"`
	LetterHeightPx    float64      `json:"letterHeightPx"`
	StrokePx          float64      `json:"strokePx"`
	Text              string       `json:"text"`
}

// ChartLinesResult is a full chart.
type ChartLinesResult struct {
	Style             chart.Style  `json:"style"`
	ViewingDistanceMM float64      `json:"viewingDistanceMM"`
	PPMScreen         float64      `json:"ppmScreen"`
	Lines             []chart.Line `json:"lines"`
}
