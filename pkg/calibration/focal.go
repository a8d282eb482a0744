package calibration

import (
	"math"
)

const (
	// DefaultIPDMM is the population-average adult interpupillary distance.
	DefaultIPDMM = 63.0

	// Observations with a smaller pixel IPD cannot be told apart from a
	// failed detection.
	minCalibrationIPDPx = 1e-6
)

// CalibrateFocalLength returns the effective focal length in pixels for a
// camera that saw eyes ipdPx apart while the user sat referenceDistanceMM
// away.
func CalibrateFocalLength(obs EyeObservation, referenceDistanceMM, realIPDMM float64) (float64, error) {
	ipd := obs.IPDPx()
	if !(ipd > minCalibrationIPDPx) || math.IsInf(ipd, 0) {
		return 0, Errorf(KindInvalidCalibrationInput, "pixel IPD %gpx is too small to calibrate", ipd)
	}
	if !(referenceDistanceMM > 0) || math.IsInf(referenceDistanceMM, 0) {
		return 0, Errorf(KindInvalidCalibrationInput, "reference distance must be positive, got %gmm", referenceDistanceMM)
	}
	if !(realIPDMM > 0) || math.IsInf(realIPDMM, 0) {
		return 0, Errorf(KindInvalidCalibrationInput, "real IPD must be positive, got %gmm", realIPDMM)
	}

	return ipd * referenceDistanceMM / realIPDMM, nil
}

// FieldOfViewFromFocal derives the camera field of view for a frame of
// widthPx x heightPx.
func FieldOfViewFromFocal(focalPx float64, widthPx, heightPx int) (*FieldOfView, error) {
	if !(focalPx > 0) {
		return nil, Errorf(KindUncalibratedState, "focal length is not calibrated")
	}
	if widthPx <= 0 || heightPx <= 0 {
		return nil, Errorf(KindInvalidCalibrationInput, "frame size must be positive, got %dx%d", widthPx, heightPx)
	}

	angle := func(px float64) float64 {
		return 2 * math.Atan(px/2/focalPx) * 180 / math.Pi
	}
	w, h := float64(widthPx), float64(heightPx)

	return &FieldOfView{
		HorizontalDeg: angle(w),
		VerticalDeg:   angle(h),
		DiagonalDeg:   angle(math.Hypot(w, h)),
	}, nil
}
