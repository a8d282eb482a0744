package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/utils/ptr"
)

const stateFileName = "acuity-state.json"

var (
	defaultFileConfig = &RawFileConfig{
		CardWidthMM:              ptr.To(calibration.ID1WidthMM),
		CardHeightMM:             ptr.To(calibration.ID1HeightMM),
		CardAxisTolerance:        ptr.To(calibration.DefaultAxisTolerance),
		InterpupillaryDistanceMM: ptr.To(calibration.DefaultIPDMM),
		// Most laptop webcams sit in the screen plane. Users with an external
		// camera on top of a monitor may want ~40mm here.
		CameraOffsetMM:           ptr.To(0.0),
		MinIPDPx:                 ptr.To(calibration.DefaultMinIPDPx),
		ScreenDPI:                ptr.To(0.0),
		DefaultViewingDistanceMM: ptr.To(3000.0),
		ChartStyle:               ptr.To("sloan"),
		SingleLetter:             ptr.To("A"),
		ChartNumerator:           ptr.To(6.0),
		ChartDenominators:        []float64{60, 48, 36, 24, 18, 12, 9, 6},
		FaceCascadePath:          ptr.To(""),
		EyeCascadePath:           ptr.To(""),
		DetectorMinNeighbors:     ptr.To(4),
		StatePath:                ptr.To(""),
		AllowNonRootAccess:       ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	CardWidthMM              *float64  `json:"cardWidthMM,omitempty"`
	CardHeightMM             *float64  `json:"cardHeightMM,omitempty"`
	CardAxisTolerance        *float64  `json:"cardAxisTolerance,omitempty"`
	InterpupillaryDistanceMM *float64  `json:"interpupillaryDistanceMM,omitempty"`
	CameraOffsetMM           *float64  `json:"cameraOffsetMM,omitempty"`
	MinIPDPx                 *float64  `json:"minIPDPx,omitempty"`
	ScreenDPI                *float64  `json:"screenDPI,omitempty"`
	DefaultViewingDistanceMM *float64  `json:"defaultViewingDistanceMM,omitempty"`
	ChartStyle               *string   `json:"chartStyle,omitempty"`
	SingleLetter             *string   `json:"singleLetter,omitempty"`
	ChartNumerator           *float64  `json:"chartNumerator,omitempty"`
	ChartDenominators        []float64 `json:"chartDenominators,omitempty"`
	FaceCascadePath          *string   `json:"faceCascadePath,omitempty"`
	EyeCascadePath           *string   `json:"eyeCascadePath,omitempty"`
	DetectorMinNeighbors     *int      `json:"detectorMinNeighbors,omitempty"`
	StatePath                *string   `json:"statePath,omitempty"`
	AllowNonRootAccess       *bool     `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		CardWidthMM:              ptr.To(c.CardWidthMM()),
		CardHeightMM:             ptr.To(c.CardHeightMM()),
		CardAxisTolerance:        ptr.To(c.CardAxisTolerance()),
		InterpupillaryDistanceMM: ptr.To(c.InterpupillaryDistanceMM()),
		CameraOffsetMM:           ptr.To(c.CameraOffsetMM()),
		MinIPDPx:                 ptr.To(c.MinIPDPx()),
		ScreenDPI:                ptr.To(c.ScreenDPI()),
		DefaultViewingDistanceMM: ptr.To(c.DefaultViewingDistanceMM()),
		ChartStyle:               ptr.To(c.ChartStyle()),
		SingleLetter:             ptr.To(c.SingleLetter()),
		ChartNumerator:           ptr.To(c.ChartNumerator()),
		ChartDenominators:        c.ChartDenominators(),
		FaceCascadePath:          ptr.To(c.FaceCascadePath()),
		EyeCascadePath:           ptr.To(c.EyeCascadePath()),
		DetectorMinNeighbors:     ptr.To(c.DetectorMinNeighbors()),
		StatePath:                ptr.To(c.StatePath()),
		AllowNonRootAccess:       ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

// read returns the configured value selected by field, or its default.
func read[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(field(f.c), *field(defaultFileConfig))
}

func (f *File) CardWidthMM() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.CardWidthMM })
}

func (f *File) CardHeightMM() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.CardHeightMM })
}

func (f *File) CardAxisTolerance() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.CardAxisTolerance })
}

func (f *File) InterpupillaryDistanceMM() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.InterpupillaryDistanceMM })
}

func (f *File) CameraOffsetMM() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.CameraOffsetMM })
}

func (f *File) MinIPDPx() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.MinIPDPx })
}

func (f *File) ScreenDPI() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.ScreenDPI })
}

func (f *File) DefaultViewingDistanceMM() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.DefaultViewingDistanceMM })
}

func (f *File) ChartStyle() string {
	return read(f, func(c *RawFileConfig) *string { return c.ChartStyle })
}

func (f *File) SingleLetter() string {
	return read(f, func(c *RawFileConfig) *string { return c.SingleLetter })
}

func (f *File) ChartNumerator() float64 {
	return read(f, func(c *RawFileConfig) *float64 { return c.ChartNumerator })
}

func (f *File) ChartDenominators() []float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	src := f.c.ChartDenominators
	if len(src) == 0 {
		src = defaultFileConfig.ChartDenominators
	}

	return append([]float64(nil), src...)
}

func (f *File) FaceCascadePath() string {
	return read(f, func(c *RawFileConfig) *string { return c.FaceCascadePath })
}

func (f *File) EyeCascadePath() string {
	return read(f, func(c *RawFileConfig) *string { return c.EyeCascadePath })
}

func (f *File) DetectorMinNeighbors() int {
	return read(f, func(c *RawFileConfig) *int { return c.DetectorMinNeighbors })
}

// StatePath defaults to a file next to the config file.
func (f *File) StatePath() string {
	p := read(f, func(c *RawFileConfig) *string { return c.StatePath })
	if p == "" && f.filepath != "" {
		p = filepath.Join(filepath.Dir(f.filepath), stateFileName)
	}
	return p
}

func (f *File) AllowNonRootAccess() bool {
	return read(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) SetInterpupillaryDistanceMM(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v <= 0 {
		panic("interpupillary distance must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.InterpupillaryDistanceMM = &v
}

func (f *File) SetCameraOffsetMM(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v < 0 {
		panic("camera offset must not be negative")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CameraOffsetMM = &v
}

func (f *File) SetScreenDPI(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v < 0 {
		panic("screen dpi must not be negative")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ScreenDPI = &v
}

func (f *File) SetChartStyle(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ChartStyle = &s
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create config directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"card":                     []float64{f.CardWidthMM(), f.CardHeightMM()},
		"cardAxisTolerance":        f.CardAxisTolerance(),
		"interpupillaryDistanceMM": f.InterpupillaryDistanceMM(),
		"cameraOffsetMM":           f.CameraOffsetMM(),
		"minIPDPx":                 f.MinIPDPx(),
		"screenDPI":                f.ScreenDPI(),
		"chartStyle":               f.ChartStyle(),
		"detectorMinNeighbors":     f.DetectorMinNeighbors(),
		"statePath":                f.StatePath(),
		"allowNonRootAccess":       f.AllowNonRootAccess(),
	}
}
