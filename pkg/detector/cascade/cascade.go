// Package cascade implements detector.Detector with OpenCV Haar cascades:
// faces are found first, then the two largest eyes inside each face.
package cascade

import (
	"context"
	"image"
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/detector"
)

const (
	scaleFactor = 1.1
	// DefaultMinNeighbors matches OpenCV's usual face detection setting.
	DefaultMinNeighbors = 4
)

var (
	minFaceSize = image.Pt(60, 60)
	minEyeSize  = image.Pt(20, 20)
)

var _ detector.Detector = &Detector{}

// Detector is safe for concurrent use; detections are serialised because
// OpenCV classifiers keep per-call scratch state.
type Detector struct {
	mu           sync.Mutex
	face         gocv.CascadeClassifier
	eye          gocv.CascadeClassifier
	minNeighbors int
}

// New loads the face and eye cascade XML files, e.g.
// haarcascade_frontalface_default.xml and haarcascade_eye_tree_eyeglasses.xml
// from the OpenCV data directory. minNeighbors is the detection threshold,
// values below 1 use DefaultMinNeighbors.
func New(faceCascadePath, eyeCascadePath string, minNeighbors int) (*Detector, error) {
	if minNeighbors < 1 {
		minNeighbors = DefaultMinNeighbors
	}

	face := gocv.NewCascadeClassifier()
	if !face.Load(faceCascadePath) {
		_ = face.Close()
		return nil, pkgerrors.Errorf("failed to load face cascade %s", faceCascadePath)
	}

	eye := gocv.NewCascadeClassifier()
	if !eye.Load(eyeCascadePath) {
		_ = face.Close()
		_ = eye.Close()
		return nil, pkgerrors.Errorf("failed to load eye cascade %s", eyeCascadePath)
	}

	return &Detector{face: face, eye: eye, minNeighbors: minNeighbors}, nil
}

func (d *Detector) Detect(ctx context.Context, img []byte) (*detector.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode image")
	}
	defer frame.Close()
	if frame.Empty() {
		return nil, pkgerrors.New("image is empty or in an unsupported format")
	}

	raw := gocv.NewMat()
	defer raw.Close()
	gocv.CvtColor(frame, &raw, gocv.ColorBGRToGray)
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.EqualizeHist(raw, &gray)

	d.mu.Lock()
	defer d.mu.Unlock()

	faces := d.face.DetectMultiScaleWithParams(gray, scaleFactor, d.minNeighbors, 0, minFaceSize, image.Point{})
	log := logrus.WithFields(logrus.Fields{
		"faces":  len(faces),
		"width":  frame.Cols(),
		"height": frame.Rows(),
	})

	res := &detector.Result{
		Frame: detector.Frame{Width: frame.Cols(), Height: frame.Rows()},
	}
	for _, f := range faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pair, ok := d.eyesInFace(gray, f); ok {
			res.Pairs = append(res.Pairs, pair)
		}
	}

	log.WithField("pairs", len(res.Pairs)).Debug("eye detection finished")
	return res, nil
}

// eyesInFace searches the upper half of the face, where eyes are, and keeps
// the two largest hits.
func (d *Detector) eyesInFace(gray gocv.Mat, face image.Rectangle) (detector.EyePair, bool) {
	upper := image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+face.Dy()*3/5)
	roi := gray.Region(upper)
	defer roi.Close()

	eyes := d.eye.DetectMultiScaleWithParams(roi, scaleFactor, d.minNeighbors, 0, minEyeSize, image.Point{})
	if len(eyes) < 2 {
		return detector.EyePair{}, false
	}
	sort.Slice(eyes, func(i, j int) bool {
		return area(eyes[i]) > area(eyes[j])
	})

	a, b := centre(upper.Min, eyes[0]), centre(upper.Min, eyes[1])
	if a == b {
		return detector.EyePair{}, false
	}

	// Larger faces are closer and better resolved.
	return detector.NewEyePair(a, b, float64(area(face)), face), true
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.face.Close()
	if eyeErr := d.eye.Close(); err == nil {
		err = eyeErr
	}
	return err
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// centre maps the centre of r, relative to origin, back to frame coordinates.
func centre(origin image.Point, r image.Rectangle) calibration.Point {
	return calibration.Point{
		X: float64(origin.X) + float64(r.Min.X+r.Max.X)/2,
		Y: float64(origin.Y) + float64(r.Min.Y+r.Max.Y)/2,
	}
}
