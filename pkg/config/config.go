package config

import "github.com/sirupsen/logrus"

type Config interface {
	// Reference card, in millimetres.
	CardWidthMM() float64
	CardHeightMM() float64
	// CardAxisTolerance is the relative width/height ppm mismatch above
	// which a card measurement is reported as skewed.
	CardAxisTolerance() float64

	InterpupillaryDistanceMM() float64
	CameraOffsetMM() float64
	MinIPDPx() float64
	// ScreenDPI is 0 when the display density is unknown.
	ScreenDPI() float64
	DefaultViewingDistanceMM() float64

	ChartStyle() string
	SingleLetter() string
	ChartNumerator() float64
	ChartDenominators() []float64

	FaceCascadePath() string
	EyeCascadePath() string
	// DetectorMinNeighbors is how many overlapping cascade hits a face or
	// eye needs before it is accepted. Higher is stricter.
	DetectorMinNeighbors() int
	StatePath() string
	AllowNonRootAccess() bool

	SetInterpupillaryDistanceMM(float64)
	SetCameraOffsetMM(float64)
	SetScreenDPI(float64)
	SetChartStyle(string)
	SetAllowNonRootAccess(bool)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
