package chart

import (
	"fmt"
	"math"

	"github.com/charlie0129/acuity/pkg/calibration"
)

const (
	// ReferenceDistanceMM is the standard Snellen test distance (6 m / 20 ft).
	ReferenceDistanceMM = 6000.0

	// An optotype is 5 critical details tall; each detail subtends 1 MAR.
	detailsPerLetter = 5
	arcMinute        = math.Pi / (180 * 60)
)

// ReferenceLetterHeightMM is the height of a 6/6 (20/20) letter at
// ReferenceDistanceMM, i.e. the size that subtends 5 arc-minutes.
var ReferenceLetterHeightMM = 2 * ReferenceDistanceMM * math.Tan(detailsPerLetter*arcMinute/2)

// DefaultDenominators are the metric Snellen lines from 6/60 down to 6/6.
var DefaultDenominators = []float64{60, 48, 36, 24, 18, 12, 9, 6}

// DefaultNumerator is the metric test distance in metres.
const DefaultNumerator = 6.0

// Spec describes one line to be drawn.
type Spec struct {
	Acuity            Acuity  `json:"acuity"`
	Style             Style   `json:"style"`
	ViewingDistanceMM float64 `json:"viewingDistanceMM"`
	PPMScreen         float64 `json:"ppmScreen"`
}

// Validate checks the numeric fields of the spec. Style is not inspected.
func (s Spec) Validate() error {
	if !positive(s.ViewingDistanceMM) {
		return calibration.Errorf(calibration.KindInvalidChartSpec, "viewing distance must be positive, got %gmm", s.ViewingDistanceMM)
	}
	if !positive(s.PPMScreen) {
		return calibration.Errorf(calibration.KindInvalidChartSpec, "screen density must be positive, got %g px/mm", s.PPMScreen)
	}
	return s.Acuity.Validate()
}

// LetterHeightMM is the physical height a letter must have to be read at
// the given acuity from distanceMM away.
func LetterHeightMM(a Acuity, distanceMM float64) float64 {
	return ReferenceLetterHeightMM * a.MAR() * (distanceMM / ReferenceDistanceMM)
}

// LetterHeightPx returns the on-screen letter height in pixels for spec.
func LetterHeightPx(spec Spec) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	px := LetterHeightMM(spec.Acuity, spec.ViewingDistanceMM) * spec.PPMScreen
	if !positive(px) {
		return 0, calibration.Errorf(calibration.KindInvalidChartSpec, "letter height %g px is out of range", px)
	}

	return px, nil
}

// StrokePx is the stroke width of a letter heightPx tall.
func StrokePx(heightPx float64) float64 {
	return heightPx / detailsPerLetter
}

// Line is one rendered row of the chart.
type Line struct {
	Label          string  `json:"label"`
	Acuity         Acuity  `json:"acuity"`
	LetterHeightPx float64 `json:"letterHeightPx"`
	// StrokePx is the critical detail (stroke width / gap) of the letter.
	StrokePx float64 `json:"strokePx"`
	Text     string  `json:"text"`
}

// Scaler sizes charts against a calibration state.
type Scaler struct {
	Style Style
}

// LetterHeightPx sizes a single acuity line using the screen density in st.
func (s Scaler) LetterHeightPx(st *calibration.State, a Acuity, viewingDistanceMM float64) (float64, error) {
	if st == nil || !st.HasPPM() {
		return 0, calibration.Errorf(calibration.KindUncalibratedState, "screen is not calibrated")
	}
	return LetterHeightPx(Spec{
		Acuity:            a,
		Style:             s.Style,
		ViewingDistanceMM: viewingDistanceMM,
		PPMScreen:         st.PPMScreen,
	})
}

// Chart builds one line per denominator, largest letters first in the
// order given. numerator is the test distance unit shared by all lines
// (6 for metric, 20 for imperial).
func (s Scaler) Chart(st *calibration.State, viewingDistanceMM, numerator float64, denominators []float64) ([]Line, error) {
	if len(denominators) == 0 {
		return nil, calibration.Errorf(calibration.KindInvalidChartSpec, "at least one chart line is required")
	}

	texts := s.Style.Lines(len(denominators))
	lines := make([]Line, 0, len(denominators))
	for i, den := range denominators {
		a := Acuity{Numerator: numerator, Denominator: den}
		px, err := s.LetterHeightPx(st, a, viewingDistanceMM)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			Label:          fmt.Sprintf("%s/%s", formatPart(numerator), formatPart(den)),
			Acuity:         a,
			LetterHeightPx: px,
			StrokePx:       StrokePx(px),
			Text:           texts[i],
		})
	}

	return lines, nil
}
