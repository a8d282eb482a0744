package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/calibration"
)

// loadState restores the calibration saved by a previous run. A missing or
// unreadable file leaves the state empty; the user simply recalibrates.
func (d *Daemon) loadState() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.statePath == "" {
		return
	}
	b, err := os.ReadFile(d.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		logrus.WithError(err).Warn("failed to read calibration state")
		return
	}
	var st calibration.State
	if err := json.Unmarshal(b, &st); err != nil {
		logrus.WithError(err).Warn("failed to unmarshal calibration state")
		return
	}
	// A focal length without its reference measurement is unusable.
	if st.FocalLengthPx > 0 && !st.HasFocalLength() {
		logrus.Warn("discarding incomplete focal length calibration")
		st.ResetFocalLength()
	}
	d.state = &st

	logrus.WithFields(logrus.Fields{
		"ppmScreen":     st.PPMScreen,
		"focalLengthPx": st.FocalLengthPx,
	}).Info("calibration state loaded")
}

// persistState must be called without d.mu held.
func (d *Daemon) persistState() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persistStateLocked()
}

func (d *Daemon) persistStateLocked() {
	if d.statePath == "" {
		return
	}
	if err := writeState(d.statePath, d.state); err != nil {
		logrus.WithError(err).Error("failed to persist calibration state")
	}
}

func writeState(path string, st *calibration.State) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "marshal calibration state")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pkgerrors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "write calibration state to %s", path)
	}
	return nil
}

// snapshotState returns a copy of the state for read-only use.
func (d *Daemon) snapshotState() calibration.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.state
}
