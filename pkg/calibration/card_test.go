package calibration

import (
	"errors"
	"math"
	"testing"

	"github.com/charlie0129/acuity/pkg/utils/ptr"
)

func TestCalibrateCard(t *testing.T) {
	tests := []struct {
		name       string
		m          CardMeasurement
		wantPPM    float64
		wantSkewed bool
		wantErr    error
	}{
		{
			name:    "width only",
			m:       CardMeasurement{WidthPx: ptr.To(325.0)},
			wantPPM: 325.0 / 85.60,
		},
		{
			name:    "height only",
			m:       CardMeasurement{HeightPx: ptr.To(200.0)},
			wantPPM: 200.0 / 53.98,
		},
		{
			name:    "both axes consistent",
			m:       CardMeasurement{WidthPx: ptr.To(342.4), HeightPx: ptr.To(215.92)},
			wantPPM: 4,
		},
		{
			name:       "both axes skewed",
			m:          CardMeasurement{WidthPx: ptr.To(342.4), HeightPx: ptr.To(180.0)},
			wantPPM:    (4 + 180.0/53.98) / 2,
			wantSkewed: true,
		},
		{
			name: "corners",
			m: CardMeasurement{Corners: []Point{
				{X: 10, Y: 10}, {X: 352.4, Y: 10}, {X: 352.4, Y: 225.92}, {X: 10, Y: 225.92},
			}},
			wantPPM: 4,
		},
		{
			name:    "nothing supplied",
			m:       CardMeasurement{},
			wantErr: ErrInvalidCalibrationInput,
		},
		{
			name:    "zero width",
			m:       CardMeasurement{WidthPx: ptr.To(0.0)},
			wantErr: ErrInvalidCalibrationInput,
		},
		{
			name:    "negative height with valid width",
			m:       CardMeasurement{WidthPx: ptr.To(300.0), HeightPx: ptr.To(-1.0)},
			wantErr: ErrInvalidCalibrationInput,
		},
		{
			name:    "three corners",
			m:       CardMeasurement{Corners: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
			wantErr: ErrInvalidCalibrationInput,
		},
		{
			name:    "collapsed corners",
			m:       CardMeasurement{Corners: []Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 10}, {X: 0, Y: 10}}},
			wantErr: ErrInvalidCalibrationInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalibrateCard(tt.m, DefaultCard, 0)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CalibrateCard() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalibrateCard() unexpected error: %v", err)
			}
			if math.Abs(got.PPM-tt.wantPPM) > 1e-9 {
				t.Errorf("CalibrateCard() ppm = %v, want %v", got.PPM, tt.wantPPM)
			}
			if got.Skewed != tt.wantSkewed {
				t.Errorf("CalibrateCard() skewed = %v, want %v (discrepancy %v)", got.Skewed, tt.wantSkewed, got.Discrepancy)
			}
		})
	}
}

func TestCalibrateCardSingleAxisIsExact(t *testing.T) {
	for _, px := range []float64{1, 37.5, 220, 325, 599.99, 4096} {
		for _, mm := range []float64{10, 53.98, 85.6, 123.456} {
			got, err := CalibrateCard(CardMeasurement{WidthPx: ptr.To(px)}, CardSpec{WidthMM: mm, HeightMM: 1}, 0)
			if err != nil {
				t.Fatalf("CalibrateCard(%v, %v) unexpected error: %v", px, mm, err)
			}
			if got.PPM != px/mm {
				t.Errorf("CalibrateCard(%v, %v) = %v, want exactly %v", px, mm, got.PPM, px/mm)
			}
		}
	}
}

func TestCalibrateCardExample(t *testing.T) {
	got, err := CalibrateCard(CardMeasurement{WidthPx: ptr.To(325.0)}, DefaultCard, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.PPM-3.797) > 0.001 {
		t.Errorf("ppm = %v, want ~3.797", got.PPM)
	}
}

func TestCalibrateCardRejectsBadCardSpec(t *testing.T) {
	_, err := CalibrateCard(CardMeasurement{WidthPx: ptr.To(300.0)}, CardSpec{WidthMM: 0, HeightMM: 50}, 0)
	if !errors.Is(err, ErrInvalidCalibrationInput) {
		t.Fatalf("expected InvalidCalibrationInput, got %v", err)
	}
}

func TestPPMFromDPI(t *testing.T) {
	ppm, err := PPMFromDPI(254)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ppm-10) > 1e-12 {
		t.Errorf("PPMFromDPI(254) = %v, want 10", ppm)
	}
	if _, err := PPMFromDPI(0); !errors.Is(err, ErrInvalidCalibrationInput) {
		t.Errorf("PPMFromDPI(0) error = %v, want InvalidCalibrationInput", err)
	}
}
