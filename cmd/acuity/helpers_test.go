package main

import (
	"math"
	"testing"

	"github.com/charlie0129/acuity/pkg/calibration"
)

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "600", want: 600},
		{in: "600mm", want: 600},
		{in: "60cm", want: 600},
		{in: " 60 CM ", want: 600},
		{in: "2m", want: 2000},
		{in: "0.6m", want: 600},
		{in: "24in", want: 609.6},
		{in: `24"`, want: 609.6},
		{in: "", wantErr: true},
		{in: "cm", wantErr: true},
		{in: "-5cm", wantErr: true},
		{in: "0", wantErr: true},
		{in: "far", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDistance(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDistance(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDistance(%q) unexpected error: %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parseDistance(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    calibration.Point
		wantErr bool
	}{
		{in: "300,240", want: calibration.Point{X: 300, Y: 240}},
		{in: " 12.5 , 7 ", want: calibration.Point{X: 12.5, Y: 7}},
		{in: "300", wantErr: true},
		{in: "1,2,3", wantErr: true},
		{in: "x,2", wantErr: true},
		{in: "1,y", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePoint(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseEyes(t *testing.T) {
	obs, err := parseEyes("300,240", "420,240")
	if err != nil {
		t.Fatalf("parseEyes() unexpected error: %v", err)
	}
	if obs.IPDPx() != 120 {
		t.Errorf("IPDPx() = %v, want 120", obs.IPDPx())
	}

	if _, err := parseEyes("300,240", ""); err == nil {
		t.Error("parseEyes() with a missing eye should fail")
	}
}

func TestHintsCoverEveryKind(t *testing.T) {
	kinds := []calibration.Kind{
		calibration.KindInvalidCalibrationInput,
		calibration.KindUncalibratedState,
		calibration.KindDetectionTooUnreliable,
		calibration.KindInvalidChartSpec,
		calibration.KindAlreadyCalibrated,
	}
	for _, k := range kinds {
		if len(hints[k]) == 0 {
			t.Errorf("no hint for %s", k)
		}
	}
}
