// Package calibration implements the screen and camera calibration used to
// size a visual-acuity chart. It contains:
//
//   - CalibrateCard / PPMFromDPI: screen pixels-per-millimetre from a card of
//     known size or from a device DPI
//   - CalibrateFocalLength: an effective camera focal length (px) from one
//     snapshot taken at a known distance
//   - DistanceEstimator: eye-to-screen distance from a fresh snapshot
//   - State: the single active calibration, with explicit reset
//
// Everything here is plain arithmetic on numbers. Images, detectors and
// persistence live elsewhere. These types are shared across daemon, client
// and CLI code to keep JSON contracts consistent.
package calibration
