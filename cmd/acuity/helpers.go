package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/charlie0129/acuity/pkg/calibration"
)

var distanceUnits = []struct {
	suffix string
	toMM   func(float64) float64
}{
	// longest suffixes first, "mm" and "cm" both end in "m"
	{"mm", func(v float64) float64 { return v }},
	{"cm", func(v float64) float64 { return v * 10 }},
	{"in", calibration.InchesToMM},
	{"m", func(v float64) float64 { return v * 1000 }},
	{`"`, calibration.InchesToMM},
}

// parseDistance parses a length such as "600", "60cm", "2m" or "24in" into
// millimetres. A bare number is in millimetres.
func parseDistance(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty distance")
	}

	toMM := func(v float64) float64 { return v }
	for _, u := range distanceUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			toMM = u.toMM
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q: expected a number with an optional mm, cm, m or in suffix", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("distance must be positive, got %g", v)
	}

	return toMM(v), nil
}

// parsePoint parses "x,y" pixel coordinates.
func parsePoint(s string) (calibration.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return calibration.Point{}, fmt.Errorf("invalid point %q: expected x,y", s)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return calibration.Point{}, fmt.Errorf("invalid x in point %q: %v", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return calibration.Point{}, fmt.Errorf("invalid y in point %q: %v", s, err)
	}

	return calibration.Point{X: x, Y: y}, nil
}

func parseEyes(left, right string) (calibration.EyeObservation, error) {
	if left == "" || right == "" {
		return calibration.EyeObservation{}, fmt.Errorf("both --left and --right eye positions are required")
	}
	l, err := parsePoint(left)
	if err != nil {
		return calibration.EyeObservation{}, err
	}
	r, err := parsePoint(right)
	if err != nil {
		return calibration.EyeObservation{}, err
	}
	return calibration.EyeObservation{Left: l, Right: r}, nil
}

func parseFloatArg(args []string, valueName string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

func formatMM(mm float64) string {
	return fmt.Sprintf("%.0f mm (%.1f in)", mm, mm/calibration.InchesToMM(1))
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
