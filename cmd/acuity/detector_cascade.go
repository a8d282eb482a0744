//go:build !nocv

package main

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/config"
	"github.com/charlie0129/acuity/pkg/detector"
	"github.com/charlie0129/acuity/pkg/detector/cascade"
)

// newDetector returns no detector when the cascades are not configured, so
// the daemon still serves the manual workflow.
func newDetector(conf config.Config) (detector.Detector, error) {
	face, eye := conf.FaceCascadePath(), conf.EyeCascadePath()
	if face == "" || eye == "" {
		return nil, nil
	}
	d, err := cascade.New(face, eye, conf.DetectorMinNeighbors())
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"face":         face,
		"eye":          eye,
		"minNeighbors": conf.DetectorMinNeighbors(),
	}).Info("eye detector loaded")
	return d, nil
}
