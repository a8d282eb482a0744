package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charlie0129/acuity/pkg/calibration"
)

// Acuity is a Snellen fraction such as 20/40 or 6/12. Numerator and
// denominator are in the same unit.
type Acuity struct {
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

// ParseAcuity parses "20/40", "6/12" or a decimal acuity like "0.5".
func ParseAcuity(s string) (Acuity, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if !found {
		dec, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Acuity{}, calibration.Errorf(calibration.KindInvalidChartSpec, "invalid acuity %q", s)
		}
		a := Acuity{Numerator: dec, Denominator: 1}
		return a, a.Validate()
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return Acuity{}, calibration.Errorf(calibration.KindInvalidChartSpec, "invalid acuity numerator in %q", s)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return Acuity{}, calibration.Errorf(calibration.KindInvalidChartSpec, "invalid acuity denominator in %q", s)
	}
	a := Acuity{Numerator: n, Denominator: d}
	return a, a.Validate()
}

// Validate checks that both parts of the fraction are positive and finite.
func (a Acuity) Validate() error {
	if !positive(a.Numerator) || !positive(a.Denominator) {
		return calibration.Errorf(calibration.KindInvalidChartSpec, "acuity must be a positive fraction, got %s", a)
	}
	return nil
}

// MAR is the minimum angle of resolution in arc-minutes.
func (a Acuity) MAR() float64 {
	return a.Denominator / a.Numerator
}

func (a Acuity) String() string {
	return fmt.Sprintf("%s/%s", formatPart(a.Numerator), formatPart(a.Denominator))
}

func formatPart(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
