package calibration

import (
	"math"
)

// DefaultMinIPDPx is the detector noise floor. Eyes closer than this on a
// webcam frame are almost always a false detection.
const DefaultMinIPDPx = 10.0

// DistanceEstimator turns a fresh eye observation into a viewing distance.
// The zero value uses DefaultMinIPDPx and no camera offset.
type DistanceEstimator struct {
	// MinIPDPx rejects observations below this pixel IPD.
	MinIPDPx float64
	// CameraOffsetMM is subtracted from the camera-to-eye distance to get
	// the eye-to-screen distance, for cameras mounted in front of or behind
	// the screen plane.
	CameraOffsetMM float64
}

// Estimate computes the distance for obs using the focal length in st.
// A non-positive realIPDMM falls back to the IPD used at calibration time.
func (e DistanceEstimator) Estimate(st *State, obs EyeObservation, realIPDMM float64) (*DistanceMeasurement, error) {
	if st == nil || !st.HasFocalLength() {
		return nil, Errorf(KindUncalibratedState, "focal length is not calibrated")
	}
	if realIPDMM <= 0 {
		realIPDMM = st.RealIPDMM
	}
	if !(realIPDMM > 0) {
		return nil, Errorf(KindInvalidCalibrationInput, "real IPD must be positive, got %gmm", realIPDMM)
	}

	minIPD := e.MinIPDPx
	if minIPD <= 0 {
		minIPD = DefaultMinIPDPx
	}
	if obs.Coincident() {
		return nil, Errorf(KindDetectionTooUnreliable, "both eyes are at the same point")
	}
	ipd := obs.IPDPx()
	if !(ipd >= minIPD) || math.IsInf(ipd, 0) {
		return nil, Errorf(KindDetectionTooUnreliable, "pixel IPD %.2fpx is below the %.2fpx noise floor", ipd, minIPD)
	}

	camToEye := DistanceFromIPD(ipd, st.FocalLengthPx, realIPDMM)

	return &DistanceMeasurement{
		IPDPx:         ipd,
		CameraToEyeMM: camToEye,
		EyeToScreenMM: math.Max(0, camToEye-math.Max(0, e.CameraOffsetMM)),
	}, nil
}

// DistanceFromIPD is the pinhole relation distance = f * realIPD / pixelIPD.
// It does no validation.
func DistanceFromIPD(ipdPx, focalPx, realIPDMM float64) float64 {
	return focalPx * realIPDMM / ipdPx
}
