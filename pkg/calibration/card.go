package calibration

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// ID-1 card size (ISO/IEC 7810), i.e. a credit or debit card.
	ID1WidthMM  = 85.60
	ID1HeightMM = 53.98

	DefaultAxisTolerance = 0.05

	mmPerInch = 25.4
)

// DefaultCard is a standard credit card.
var DefaultCard = CardSpec{WidthMM: ID1WidthMM, HeightMM: ID1HeightMM}

// CalibrateCard derives screen pixels-per-millimetre from a measured card.
//
// With a single axis the ratio is exactly px / mm. With both axes it is the
// mean of the per-axis ratios, and the result is flagged as skewed when the
// two ratios differ by more than tolerance (relative to their mean).
// A non-positive tolerance selects DefaultAxisTolerance.
func CalibrateCard(m CardMeasurement, card CardSpec, tolerance float64) (*CardResult, error) {
	if !(card.WidthMM > 0) || !(card.HeightMM > 0) {
		return nil, Errorf(KindInvalidCalibrationInput, "card size must be positive, got %gx%gmm", card.WidthMM, card.HeightMM)
	}
	if tolerance <= 0 {
		tolerance = DefaultAxisTolerance
	}

	widthPx, heightPx := m.WidthPx, m.HeightPx
	if len(m.Corners) > 0 {
		w, h, err := cornerExtent(m.Corners)
		if err != nil {
			return nil, err
		}
		widthPx, heightPx = &w, &h
	}

	if widthPx == nil && heightPx == nil {
		return nil, Errorf(KindInvalidCalibrationInput, "card width or height in pixels is required")
	}
	if widthPx != nil && !validPixels(*widthPx) {
		return nil, Errorf(KindInvalidCalibrationInput, "card width must be positive, got %gpx", *widthPx)
	}
	if heightPx != nil && !validPixels(*heightPx) {
		return nil, Errorf(KindInvalidCalibrationInput, "card height must be positive, got %gpx", *heightPx)
	}

	res := &CardResult{}
	switch {
	case widthPx != nil && heightPx != nil:
		res.PPMWidth = *widthPx / card.WidthMM
		res.PPMHeight = *heightPx / card.HeightMM
		res.PPM = stat.Mean([]float64{res.PPMWidth, res.PPMHeight}, nil)
		res.Discrepancy = math.Abs(res.PPMWidth-res.PPMHeight) / res.PPM
		res.Skewed = res.Discrepancy > tolerance
	case widthPx != nil:
		res.PPMWidth = *widthPx / card.WidthMM
		res.PPM = res.PPMWidth
	default:
		res.PPMHeight = *heightPx / card.HeightMM
		res.PPM = res.PPMHeight
	}

	return res, nil
}

// PPMFromDPI converts a device DPI into pixels per millimetre.
func PPMFromDPI(dpi float64) (float64, error) {
	if !validPixels(dpi) {
		return 0, Errorf(KindInvalidCalibrationInput, "dpi must be positive, got %g", dpi)
	}
	return dpi / mmPerInch, nil
}

// InchesToMM converts a length in inches to millimetres.
func InchesToMM(in float64) float64 {
	return in * mmPerInch
}

// cornerExtent returns the mean horizontal and vertical edge lengths of a
// quadrilateral given as top-left, top-right, bottom-right, bottom-left.
func cornerExtent(c []Point) (float64, float64, error) {
	if len(c) != 4 {
		return 0, 0, Errorf(KindInvalidCalibrationInput, "card corners need exactly 4 points, got %d", len(c))
	}
	tl, tr, br, bl := c[0], c[1], c[2], c[3]

	top, bottom := tl.DistanceTo(tr), bl.DistanceTo(br)
	left, right := tl.DistanceTo(bl), tr.DistanceTo(br)
	for _, edge := range []float64{top, bottom, left, right} {
		if !validPixels(edge) {
			return 0, 0, Errorf(KindInvalidCalibrationInput, "card corners are degenerate")
		}
	}

	return stat.Mean([]float64{top, bottom}, nil), stat.Mean([]float64{left, right}, nil), nil
}

func validPixels(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
