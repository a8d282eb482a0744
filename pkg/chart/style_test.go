package chart

import (
	"errors"
	"reflect"
	"testing"

	"github.com/charlie0129/acuity/pkg/calibration"
)

func TestStyleLines(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		n     int
		want  []string
	}{
		{
			name:  "sloan rotates letters",
			style: Style{Kind: StyleSloan},
			n:     3,
			want:  []string{"CD", "DHK", "HKNO"},
		},
		{
			name:  "classic",
			style: Style{Kind: StyleClassic},
			n:     4,
			want:  []string{"E", "FP", "TOZ", "LPED"},
		},
		{
			name:  "classic repeats last row",
			style: Style{Kind: StyleClassic},
			n:     10,
			want:  []string{"E", "FP", "TOZ", "LPED", "PECFD", "EDFCZP", "FELOPZD", "DEFPOTEC", "DEFPOTEC", "DEFPOTEC"},
		},
		{
			name:  "single letter",
			style: Style{Kind: StyleSingleLetter, Letter: "E"},
			n:     3,
			want:  []string{"EE", "EEE", "EEEE"},
		},
		{
			name:  "zero lines",
			style: Style{Kind: StyleSloan},
			n:     0,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.Lines(tt.n); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestStyleLinesCapLength(t *testing.T) {
	lines := Style{Kind: StyleSingleLetter}.Lines(20)
	if got := len(lines[19]); got != maxLineLetters {
		t.Errorf("last line has %d letters, want %d", got, maxLineLetters)
	}
	if lines[0] != "AA" {
		t.Errorf("default single letter line = %q, want AA", lines[0])
	}
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("Single", "e")
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != StyleSingleLetter || s.Letter != "E" {
		t.Errorf("ParseStyle() = %+v", s)
	}

	s, err = ParseStyle("", "")
	if err != nil || s.Kind != StyleSloan {
		t.Errorf("ParseStyle(\"\") = %+v, %v; want sloan", s, err)
	}

	if _, err := ParseStyle("landolt", ""); !errors.Is(err, calibration.ErrInvalidChartSpec) {
		t.Errorf("ParseStyle(landolt) error = %v, want InvalidChartSpec", err)
	}
}

func TestParseAcuity(t *testing.T) {
	tests := []struct {
		in      string
		want    Acuity
		wantErr bool
	}{
		{in: "20/20", want: Acuity{20, 20}},
		{in: " 6 / 12 ", want: Acuity{6, 12}},
		{in: "0.5", want: Acuity{0.5, 1}},
		{in: "20/0", wantErr: true},
		{in: "-20/40", wantErr: true},
		{in: "twenty/twenty", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAcuity(tt.in)
			if tt.wantErr {
				if !errors.Is(err, calibration.ErrInvalidChartSpec) {
					t.Fatalf("ParseAcuity(%q) error = %v, want InvalidChartSpec", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAcuity(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseAcuity(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}

	if got := (Acuity{20, 40}).String(); got != "20/40" {
		t.Errorf("String() = %q", got)
	}
}
