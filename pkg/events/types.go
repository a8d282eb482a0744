package events

import "encoding/json"

// Event name constants
const (
	ScreenCalibrated      = "calibration.screen"
	FocalLengthCalibrated = "calibration.focalLength"
	CalibrationReset      = "calibration.reset"
	DistanceMeasured      = "distance.measured"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// ScreenEvent is the payload of ScreenCalibrated.
type ScreenEvent struct {
	PPM    float64 `json:"ppm"`
	Source string  `json:"source"`
	Skewed bool    `json:"skewed,omitempty"`
	Ts     int64   `json:"ts"`
}

// FocalLengthEvent is the payload of FocalLengthCalibrated.
type FocalLengthEvent struct {
	FocalLengthPx       float64 `json:"focalLengthPx"`
	ReferenceDistanceMM float64 `json:"referenceDistanceMM"`
	Ts                  int64   `json:"ts"`
}

// ResetEvent is the payload of CalibrationReset. Scope is "all", "screen"
// or "focalLength".
type ResetEvent struct {
	Scope string `json:"scope"`
	Ts    int64  `json:"ts"`
}

// DistanceEvent is the payload of DistanceMeasured.
type DistanceEvent struct {
	EyeToScreenMM float64 `json:"eyeToScreenMM"`
	IPDPx         float64 `json:"ipdPx"`
	Ts            int64   `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
