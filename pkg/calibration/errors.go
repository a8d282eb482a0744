package calibration

import (
	"errors"
	"fmt"
)

// Kind classifies calibration failures. Every kind maps to a recoverable
// user action, so callers switch on it rather than on messages.
type Kind string

const (
	KindInvalidCalibrationInput Kind = "InvalidCalibrationInput"
	KindUncalibratedState       Kind = "UncalibratedState"
	KindDetectionTooUnreliable  Kind = "DetectionTooUnreliable"
	KindInvalidChartSpec        Kind = "InvalidChartSpec"
	KindAlreadyCalibrated       Kind = "AlreadyCalibrated"
)

var (
	ErrInvalidCalibrationInput = &Error{Kind: KindInvalidCalibrationInput, msg: "invalid calibration input"}
	ErrUncalibratedState       = &Error{Kind: KindUncalibratedState, msg: "not calibrated"}
	ErrDetectionTooUnreliable  = &Error{Kind: KindDetectionTooUnreliable, msg: "detection too unreliable"}
	ErrInvalidChartSpec        = &Error{Kind: KindInvalidChartSpec, msg: "invalid chart spec"}
	ErrAlreadyCalibrated       = &Error{Kind: KindAlreadyCalibrated, msg: "already calibrated"}
)

// Error is returned by every operation in this package and in package chart.
// errors.Is matches any two errors of the same Kind.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf creates an error of the given kind.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" if err is not a calibration error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
