package daemon

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/api"
	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/chart"
	"github.com/charlie0129/acuity/pkg/config"
	"github.com/charlie0129/acuity/pkg/detector"
	"github.com/charlie0129/acuity/pkg/events"
	"github.com/charlie0129/acuity/pkg/version"
)

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) getState(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.snapshotState())
}

func (d *Daemon) resetState(c *gin.Context) {
	d.reset(c, "all", (*calibration.State).Reset)
}

func (d *Daemon) resetScreen(c *gin.Context) {
	d.reset(c, "screen", (*calibration.State).ResetScreen)
}

func (d *Daemon) resetFocalLength(c *gin.Context) {
	d.reset(c, "focalLength", (*calibration.State).ResetFocalLength)
}

func (d *Daemon) reset(c *gin.Context, scope string, fn func(*calibration.State)) {
	d.mu.Lock()
	fn(d.state)
	d.persistStateLocked()
	st := *d.state
	d.mu.Unlock()

	logrus.WithField("scope", scope).Info("calibration reset")
	d.hub.Publish(events.CalibrationReset, events.ResetEvent{
		Scope: scope,
		Ts:    time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusOK, st)
}

func (d *Daemon) setScreenFromCard(c *gin.Context) {
	var req api.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	card := calibration.CardSpec{
		WidthMM:  d.conf.CardWidthMM(),
		HeightMM: d.conf.CardHeightMM(),
	}
	if req.Card != nil {
		card = *req.Card
	}

	d.mu.Lock()
	res, err := d.state.CalibrateScreenFromCard(req.CardMeasurement, card, d.conf.CardAxisTolerance())
	if err == nil {
		d.persistStateLocked()
	}
	d.mu.Unlock()
	if err != nil {
		abortWithError(c, err)
		return
	}

	log := logrus.WithFields(logrus.Fields{
		"ppm":         res.PPM,
		"discrepancy": res.Discrepancy,
	})
	if res.Skewed {
		log.Warn("card measurements disagree, the card may be skewed")
	} else {
		log.Info("screen calibrated from card")
	}

	d.hub.Publish(events.ScreenCalibrated, events.ScreenEvent{
		PPM:    res.PPM,
		Source: string(calibration.PPMSourceCard),
		Skewed: res.Skewed,
		Ts:     time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, res)
}

func (d *Daemon) setScreenFromDPI(c *gin.Context) {
	var dpi float64
	if err := c.ShouldBindJSON(&dpi); err != nil {
		abortBadRequest(c, err)
		return
	}

	ppm, err := d.calibrateFromDPI(dpi)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, ppm)
}

func (d *Daemon) calibrateFromDPI(dpi float64) (float64, error) {
	d.mu.Lock()
	ppm, err := d.state.CalibrateScreenFromDPI(dpi)
	if err == nil {
		d.persistStateLocked()
	}
	d.mu.Unlock()
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"dpi": dpi,
		"ppm": ppm,
	}).Info("screen calibrated from dpi")
	d.hub.Publish(events.ScreenCalibrated, events.ScreenEvent{
		PPM:    ppm,
		Source: string(calibration.PPMSourceDPI),
		Ts:     time.Now().Unix(),
	})

	return ppm, nil
}

func (d *Daemon) setFocalLength(c *gin.Context) {
	var req api.FocalLengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	st, err := d.calibrateFocalLength(req.Observation, req.ReferenceDistanceMM, req.RealIPDMM)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, st)
}

// calibrateFocalLength falls back to the configured IPD when realIPDMM is
// not given. Observations below the distance noise floor are refused before
// the state is touched.
func (d *Daemon) calibrateFocalLength(obs calibration.EyeObservation, referenceDistanceMM, realIPDMM float64) (calibration.State, error) {
	if realIPDMM <= 0 {
		realIPDMM = d.conf.InterpupillaryDistanceMM()
	}
	minIPD := d.conf.MinIPDPx()
	if minIPD <= 0 {
		minIPD = calibration.DefaultMinIPDPx
	}
	// coincident eyes are left to the calibrator as bad input
	if ipd := obs.IPDPx(); !obs.Coincident() && ipd < minIPD {
		return calibration.State{}, calibration.Errorf(calibration.KindDetectionTooUnreliable, "pixel IPD %.2fpx is below the %.2fpx noise floor", ipd, minIPD)
	}

	d.mu.Lock()
	f, err := d.state.CalibrateFocalLength(obs, referenceDistanceMM, realIPDMM)
	if err == nil {
		d.persistStateLocked()
	}
	st := *d.state
	d.mu.Unlock()
	if err != nil {
		return calibration.State{}, err
	}

	logrus.WithFields(logrus.Fields{
		"focalLengthPx":       f,
		"referenceDistanceMM": referenceDistanceMM,
		"ipdPx":               obs.IPDPx(),
		"realIPDMM":           realIPDMM,
	}).Info("focal length calibrated")
	d.hub.Publish(events.FocalLengthCalibrated, events.FocalLengthEvent{
		FocalLengthPx:       f,
		ReferenceDistanceMM: referenceDistanceMM,
		Ts:                  time.Now().Unix(),
	})

	return st, nil
}

func (d *Daemon) measureDistance(c *gin.Context) {
	var obs calibration.EyeObservation
	if err := c.ShouldBindJSON(&obs); err != nil {
		abortBadRequest(c, err)
		return
	}

	m, err := d.estimate(obs)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, m)
}

// estimate uses the IPD the focal length was calibrated with, so both
// measurements share one assumption about the user.
func (d *Daemon) estimate(obs calibration.EyeObservation) (*calibration.DistanceMeasurement, error) {
	est := calibration.DistanceEstimator{
		MinIPDPx:       d.conf.MinIPDPx(),
		CameraOffsetMM: d.conf.CameraOffsetMM(),
	}

	st := d.snapshotState()
	m, err := est.Estimate(&st, obs, 0)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ipdPx":         m.IPDPx,
		"eyeToScreenMM": m.EyeToScreenMM,
	}).Debug("distance measured")
	d.hub.Publish(events.DistanceMeasured, events.DistanceEvent{
		EyeToScreenMM: m.EyeToScreenMM,
		IPDPx:         m.IPDPx,
		Ts:            time.Now().Unix(),
	})

	return m, nil
}

// snapshot runs the detector on the uploaded image. With a
// referenceDistance query the detected eyes also calibrate the focal
// length.
func (d *Daemon) snapshot(c *gin.Context) {
	if d.detector == nil {
		err := pkgerrors.New("no eye detector configured, set faceCascadePath and eyeCascadePath")
		abortWithStatus(c, http.StatusServiceUnavailable, "", err)
		return
	}

	referenceDistanceMM, calibrate, err := floatQuery(c, "referenceDistance")
	if err != nil {
		abortWithError(c, calibration.Errorf(calibration.KindInvalidCalibrationInput, "invalid referenceDistance: %v", err))
		return
	}
	if calibrate && !(referenceDistanceMM > 0) {
		abortWithError(c, calibration.Errorf(calibration.KindInvalidCalibrationInput, "referenceDistance must be positive, got %gmm", referenceDistanceMM))
		return
	}

	img, err := c.GetRawData()
	if err != nil {
		abortBadRequest(c, pkgerrors.Wrap(err, "failed to read image"))
		return
	}
	if len(img) == 0 {
		abortWithError(c, calibration.Errorf(calibration.KindInvalidCalibrationInput, "image is empty"))
		return
	}

	found, err := d.detector.Detect(c.Request.Context(), img)
	if err != nil {
		abortWithStatus(c, http.StatusBadRequest, "", err)
		return
	}

	pair, ok := detector.Best(found.Pairs)
	if !ok {
		abortWithError(c, calibration.Errorf(calibration.KindDetectionTooUnreliable, "no eye pair found in a %dx%d image", found.Frame.Width, found.Frame.Height))
		return
	}
	obs := pair.Observation()

	res := api.SnapshotResult{
		Frame: found.Frame,
		Pairs: len(found.Pairs),
		Pair:  pair,
		IPDPx: obs.IPDPx(),
	}

	if calibrate {
		st, err := d.calibrateFocalLength(obs, referenceDistanceMM, 0)
		if err != nil {
			abortWithError(c, err)
			return
		}
		res.FocalLengthPx = st.FocalLengthPx
	}

	st := d.snapshotState()
	if st.HasFocalLength() {
		fov, err := calibration.FieldOfViewFromFocal(st.FocalLengthPx, found.Frame.Width, found.Frame.Height)
		if err != nil {
			logrus.WithError(err).Warn("failed to compute field of view")
		} else {
			res.FieldOfView = fov
		}

		m, err := d.estimate(obs)
		if err != nil {
			abortWithError(c, err)
			return
		}
		res.Distance = m
	}

	c.IndentedJSON(http.StatusOK, res)
}

func (d *Daemon) getChart(c *gin.Context) {
	a, err := chart.ParseAcuity(c.DefaultQuery("acuity", "6/6"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	scaler, distance, ok := d.chartParams(c)
	if !ok {
		return
	}

	st := d.snapshotState()
	px, err := scaler.LetterHeightPx(&st, a, distance)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, api.ChartResult{
		Acuity:            a,
		Style:             scaler.Style,
		ViewingDistanceMM: distance,
		PPMScreen:         st.PPMScreen,
		LetterHeightPx:    px,
		StrokePx:          chart.StrokePx(px),
		Text:              scaler.Style.Lines(1)[0],
	})
}

func (d *Daemon) getChartLines(c *gin.Context) {
	scaler, distance, ok := d.chartParams(c)
	if !ok {
		return
	}

	st := d.snapshotState()
	lines, err := scaler.Chart(&st, distance, d.conf.ChartNumerator(), d.conf.ChartDenominators())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, api.ChartLinesResult{
		Style:             scaler.Style,
		ViewingDistanceMM: distance,
		PPMScreen:         st.PPMScreen,
		Lines:             lines,
	})
}

// chartParams reads the style, letter and distance queries shared by the
// chart endpoints. It writes the error response itself.
func (d *Daemon) chartParams(c *gin.Context) (chart.Scaler, float64, bool) {
	style, err := chart.ParseStyle(
		c.DefaultQuery("style", d.conf.ChartStyle()),
		c.DefaultQuery("letter", d.conf.SingleLetter()),
	)
	if err != nil {
		abortWithError(c, err)
		return chart.Scaler{}, 0, false
	}

	distance, ok, err := floatQuery(c, "distance")
	if err != nil {
		abortWithError(c, calibration.Errorf(calibration.KindInvalidChartSpec, "invalid distance: %v", err))
		return chart.Scaler{}, 0, false
	}
	if !ok {
		distance = d.conf.DefaultViewingDistanceMM()
		logrus.WithField("distanceMM", distance).Warn("no viewing distance given, using the configured default")
	}

	return chart.Scaler{Style: style}, distance, true
}

func (d *Daemon) streamEvents(c *gin.Context) {
	ch, cancel := d.hub.Subscribe()
	defer cancel()

	logrus.WithField("subscribers", d.hub.Subscribers()).Debug("event subscriber connected")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		}
	})
}

// floatQuery reports whether key was given. An empty value counts as given.
func floatQuery(c *gin.Context, key string) (float64, bool, error) {
	s, ok := c.GetQuery(key)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, true, err
}
