package client

import (
	"encoding/json"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/acuity/pkg/api"
	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/config"
)

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetState() (*calibration.State, error) {
	ret, err := c.Get("/state")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get calibration state")
	}
	return decodeState(ret)
}

// Reset discards part of the calibration. scope is "all", "screen" or
// "focal-length".
func (c *Client) Reset(scope string) (*calibration.State, error) {
	path := "/state"
	if scope != "" && scope != "all" {
		path += "/" + scope
	}
	ret, err := c.Delete(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to reset %s calibration", scope)
	}
	return decodeState(ret)
}

// CalibrateCard does not wrap calibration errors, so callers can match
// their kind.
func (c *Client) CalibrateCard(req api.CardRequest) (*calibration.CardResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ret, err := c.Put("/screen/card", string(payload))
	if err != nil {
		return nil, err
	}

	var res calibration.CardResult
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal card result")
	}
	return &res, nil
}

func (c *Client) CalibrateDPI(dpi float64) (float64, error) {
	ret, err := c.Put("/screen/dpi", strconv.FormatFloat(dpi, 'f', -1, 64))
	if err != nil {
		return 0, err
	}
	ppm, err := strconv.ParseFloat(ret, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse ppm")
	}
	return ppm, nil
}

func (c *Client) CalibrateFocalLength(req api.FocalLengthRequest) (*calibration.State, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ret, err := c.Put("/focal-length", string(payload))
	if err != nil {
		return nil, err
	}
	return decodeState(ret)
}

func (c *Client) MeasureDistance(obs calibration.EyeObservation) (*calibration.DistanceMeasurement, error) {
	payload, err := json.Marshal(obs)
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/distance", string(payload))
	if err != nil {
		return nil, err
	}

	var m calibration.DistanceMeasurement
	if err := json.Unmarshal([]byte(ret), &m); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal distance")
	}
	return &m, nil
}

// Snapshot uploads an encoded image. A positive referenceDistanceMM also
// calibrates the focal length from the detected eyes.
func (c *Client) Snapshot(img []byte, referenceDistanceMM float64) (*api.SnapshotResult, error) {
	path := "/snapshot"
	if referenceDistanceMM > 0 {
		path += "?referenceDistance=" + strconv.FormatFloat(referenceDistanceMM, 'f', -1, 64)
	}
	ret, err := c.Post(path, string(img))
	if err != nil {
		return nil, err
	}

	var res api.SnapshotResult
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal snapshot result")
	}
	return &res, nil
}

// ChartQuery selects a chart. Zero values use the daemon's configuration.
type ChartQuery struct {
	Acuity            string
	ViewingDistanceMM float64
	Style             string
	Letter            string
}

func (q ChartQuery) encode() string {
	v := url.Values{}
	if q.Acuity != "" {
		v.Set("acuity", q.Acuity)
	}
	if q.ViewingDistanceMM > 0 {
		v.Set("distance", strconv.FormatFloat(q.ViewingDistanceMM, 'f', -1, 64))
	}
	if q.Style != "" {
		v.Set("style", q.Style)
	}
	if q.Letter != "" {
		v.Set("letter", q.Letter)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) GetChart(q ChartQuery) (*api.ChartResult, error) {
	ret, err := c.Get("/chart" + q.encode())
	if err != nil {
		return nil, err
	}

	var res api.ChartResult
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal chart")
	}
	return &res, nil
}

// GetChartLines ignores q.Acuity; the lines come from the configured
// denominators.
func (c *Client) GetChartLines(q ChartQuery) (*api.ChartLinesResult, error) {
	q.Acuity = ""
	ret, err := c.Get("/chart/lines" + q.encode())
	if err != nil {
		return nil, err
	}

	var res api.ChartLinesResult
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal chart lines")
	}
	return &res, nil
}

func decodeState(ret string) (*calibration.State, error) {
	var st calibration.State
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration state")
	}
	return &st, nil
}
