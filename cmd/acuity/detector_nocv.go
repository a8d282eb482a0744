//go:build nocv

package main

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/config"
	"github.com/charlie0129/acuity/pkg/detector"
)

// newDetector is used by builds without OpenCV. Snapshots answer 503 and
// eye positions have to be given by hand.
func newDetector(conf config.Config) (detector.Detector, error) {
	if conf.FaceCascadePath() != "" || conf.EyeCascadePath() != "" {
		logrus.Warn("acuity was built without OpenCV, ignoring faceCascadePath and eyeCascadePath")
	}
	return nil, nil
}
