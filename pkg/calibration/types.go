package calibration

import (
	"gonum.org/v1/gonum/floats"
)

// Point is a pixel coordinate in an image or on screen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between p and q in pixels.
func (p Point) DistanceTo(q Point) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{q.X, q.Y}, 2)
}

// EyeObservation is a pair of eye centres from a single snapshot.
type EyeObservation struct {
	Left  Point `json:"left"`
	Right Point `json:"right"`
}

// IPDPx is the interpupillary distance in pixels.
func (o EyeObservation) IPDPx() float64 {
	return o.Left.DistanceTo(o.Right)
}

// Coincident reports whether both eyes were placed on the same pixel.
func (o EyeObservation) Coincident() bool {
	return o.Left == o.Right
}

// CardSpec is the physical size of the reference card.
type CardSpec struct {
	WidthMM  float64 `json:"widthMM"`
	HeightMM float64 `json:"heightMM"`
}

// CardMeasurement is the on-screen (or in-photo) size of the reference card.
// Either of WidthPx / HeightPx may be omitted. When Corners is set it must
// hold exactly four points ordered top-left, top-right, bottom-right,
// bottom-left and takes precedence over WidthPx / HeightPx.
type CardMeasurement struct {
	WidthPx  *float64 `json:"widthPx,omitempty"`
	HeightPx *float64 `json:"heightPx,omitempty"`
	Corners  []Point  `json:"corners,omitempty"`
}

// CardResult is the outcome of a card calibration. PPMWidth or PPMHeight is
// zero when that axis was not measured.
type CardResult struct {
	PPM       float64 `json:"ppm"`
	PPMWidth  float64 `json:"ppmWidth,omitempty"`
	PPMHeight float64 `json:"ppmHeight,omitempty"`
	// Discrepancy is |ppmWidth-ppmHeight| / ppm, only set when both axes are known.
	Discrepancy float64 `json:"discrepancy"`
	// Skewed is set when Discrepancy exceeds the tolerance, which usually
	// means the card was photographed at an angle or mis-aligned.
	Skewed bool `json:"skewed"`
}

// DistanceMeasurement is the result of one distance estimate. It is derived
// from a single snapshot and must not be reused for the next one.
type DistanceMeasurement struct {
	IPDPx         float64 `json:"ipdPx"`
	CameraToEyeMM float64 `json:"cameraToEyeMM"`
	EyeToScreenMM float64 `json:"eyeToScreenMM"`
}

// FieldOfView is the camera field of view in degrees.
type FieldOfView struct {
	HorizontalDeg float64 `json:"horizontalDeg"`
	VerticalDeg   float64 `json:"verticalDeg"`
	DiagonalDeg   float64 `json:"diagonalDeg"`
}
