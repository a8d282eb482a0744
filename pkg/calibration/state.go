package calibration

import "time"

// PPMSource records where the screen density came from.
type PPMSource string

const (
	PPMSourceNone PPMSource = ""
	PPMSourceCard PPMSource = "card"
	PPMSourceDPI  PPMSource = "dpi"
)

// State is the single active calibration. It is created at the start of a
// calibration workflow, written once by the screen and focal-length steps and
// read by everything after. Recalibrating a value requires resetting it first.
//
// State is not safe for concurrent use; owners serialise access.
type State struct {
	PPMScreen float64   `json:"ppmScreen"`
	PPMSource PPMSource `json:"ppmSource,omitempty"`

	FocalLengthPx       float64 `json:"focalLengthPx"`
	ReferenceDistanceMM float64 `json:"referenceDistanceMM"`
	ReferenceIPDPx      float64 `json:"referenceIPDPx"`
	// RealIPDMM is the real IPD assumed when the focal length was computed.
	RealIPDMM float64 `json:"realIPDMM"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewState returns an empty, uncalibrated state.
func NewState() *State {
	return &State{}
}

// HasPPM reports whether the screen density is known.
func (s *State) HasPPM() bool {
	return s.PPMScreen > 0
}

// HasFocalLength reports whether the focal length is usable. It requires
// the reference measurement it was derived from as well.
func (s *State) HasFocalLength() bool {
	return s.FocalLengthPx > 0 && s.ReferenceDistanceMM > 0 && s.ReferenceIPDPx > 0
}

// CalibrateScreenFromCard runs CalibrateCard and stores the resulting ppm.
// A skewed card is still stored; callers decide whether to re-prompt.
func (s *State) CalibrateScreenFromCard(m CardMeasurement, card CardSpec, tolerance float64) (*CardResult, error) {
	if s.HasPPM() {
		return nil, Errorf(KindAlreadyCalibrated, "screen is already calibrated (%.3f px/mm from %s), reset it first", s.PPMScreen, s.PPMSource)
	}
	res, err := CalibrateCard(m, card, tolerance)
	if err != nil {
		return nil, err
	}
	s.PPMScreen = res.PPM
	s.PPMSource = PPMSourceCard
	s.UpdatedAt = time.Now()
	return res, nil
}

// CalibrateScreenFromDPI stores the ppm of a display with a known DPI.
func (s *State) CalibrateScreenFromDPI(dpi float64) (float64, error) {
	if s.HasPPM() {
		return 0, Errorf(KindAlreadyCalibrated, "screen is already calibrated (%.3f px/mm from %s), reset it first", s.PPMScreen, s.PPMSource)
	}
	ppm, err := PPMFromDPI(dpi)
	if err != nil {
		return 0, err
	}
	s.PPMScreen = ppm
	s.PPMSource = PPMSourceDPI
	s.UpdatedAt = time.Now()
	return ppm, nil
}

// CalibrateFocalLength runs CalibrateFocalLength and stores the result along
// with the reference measurement.
func (s *State) CalibrateFocalLength(obs EyeObservation, referenceDistanceMM, realIPDMM float64) (float64, error) {
	if s.HasFocalLength() {
		return 0, Errorf(KindAlreadyCalibrated, "focal length is already calibrated (%.1fpx), reset it first", s.FocalLengthPx)
	}
	f, err := CalibrateFocalLength(obs, referenceDistanceMM, realIPDMM)
	if err != nil {
		return 0, err
	}
	s.FocalLengthPx = f
	s.ReferenceDistanceMM = referenceDistanceMM
	s.ReferenceIPDPx = obs.IPDPx()
	s.RealIPDMM = realIPDMM
	s.UpdatedAt = time.Now()
	return f, nil
}

// Reset discards the whole calibration.
func (s *State) Reset() {
	*s = State{UpdatedAt: time.Now()}
}

// ResetScreen discards only the screen density.
func (s *State) ResetScreen() {
	s.PPMScreen = 0
	s.PPMSource = PPMSourceNone
	s.UpdatedAt = time.Now()
}

// ResetFocalLength discards only the focal-length calibration.
func (s *State) ResetFocalLength() {
	s.FocalLengthPx = 0
	s.ReferenceDistanceMM = 0
	s.ReferenceIPDPx = 0
	s.RealIPDMM = 0
	s.UpdatedAt = time.Now()
}
