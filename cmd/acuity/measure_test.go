package main

import (
	"encoding/json"
	"testing"

	"github.com/charlie0129/acuity/pkg/events"
)

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   events.Event
		want string
	}{
		{
			ev:   events.Event{Name: events.ScreenCalibrated, Data: json.RawMessage(`{"ppm":3.7796,"source":"dpi"}`)},
			want: "screen calibrated from dpi: 3.780 px/mm",
		},
		{
			ev:   events.Event{Name: events.ScreenCalibrated, Data: json.RawMessage(`{"ppm":3.8,"source":"card","skewed":true}`)},
			want: "screen calibrated from card: 3.800 px/mm (card skewed)",
		},
		{
			ev:   events.Event{Name: events.CalibrationReset, Data: json.RawMessage(`{"scope":"screen"}`)},
			want: "calibration reset: screen",
		},
		{
			ev:   events.Event{Name: events.DistanceMeasured, Data: json.RawMessage(`{"eyeToScreenMM":508}`)},
			want: "distance: 508 mm (20.0 in)",
		},
		{
			ev:   events.Event{Name: "something.else", Data: json.RawMessage(`{}`)},
			want: "something.else {}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.ev.Name, func(t *testing.T) {
			if got := describeEvent(tt.ev); got != tt.want {
				t.Errorf("describeEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}
