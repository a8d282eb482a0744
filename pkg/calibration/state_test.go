package calibration

import (
	"errors"
	"testing"

	"github.com/charlie0129/acuity/pkg/utils/ptr"
)

func TestStateWriteOnce(t *testing.T) {
	st := NewState()
	if st.HasPPM() || st.HasFocalLength() {
		t.Fatalf("new state should be uncalibrated: %+v", st)
	}

	if _, err := st.CalibrateScreenFromCard(CardMeasurement{WidthPx: ptr.To(325.0)}, DefaultCard, 0); err != nil {
		t.Fatalf("CalibrateScreenFromCard() unexpected error: %v", err)
	}
	if st.PPMSource != PPMSourceCard {
		t.Errorf("ppm source = %q, want card", st.PPMSource)
	}
	if _, err := st.CalibrateScreenFromDPI(96); !errors.Is(err, ErrAlreadyCalibrated) {
		t.Fatalf("second screen calibration error = %v, want AlreadyCalibrated", err)
	}

	if _, err := st.CalibrateFocalLength(obsWithIPD(120), 500, 63); err != nil {
		t.Fatalf("CalibrateFocalLength() unexpected error: %v", err)
	}
	if _, err := st.CalibrateFocalLength(obsWithIPD(100), 500, 63); !errors.Is(err, ErrAlreadyCalibrated) {
		t.Fatalf("second focal calibration error = %v, want AlreadyCalibrated", err)
	}
	if st.ReferenceIPDPx != 120 || st.ReferenceDistanceMM != 500 || st.RealIPDMM != 63 {
		t.Errorf("reference measurement not recorded: %+v", st)
	}
}

func TestStateFailedCalibrationLeavesStateUntouched(t *testing.T) {
	st := NewState()
	if _, err := st.CalibrateFocalLength(obsWithIPD(0), 500, 63); err == nil {
		t.Fatal("expected error")
	}
	if _, err := st.CalibrateScreenFromCard(CardMeasurement{}, DefaultCard, 0); err == nil {
		t.Fatal("expected error")
	}
	if st.HasPPM() || st.HasFocalLength() {
		t.Fatalf("state changed after failed calibration: %+v", st)
	}
}

func TestStateReset(t *testing.T) {
	st := NewState()
	if _, err := st.CalibrateScreenFromDPI(96); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CalibrateFocalLength(obsWithIPD(120), 500, 63); err != nil {
		t.Fatal(err)
	}

	st.ResetScreen()
	if st.HasPPM() {
		t.Error("ResetScreen() kept ppm")
	}
	if !st.HasFocalLength() {
		t.Error("ResetScreen() dropped focal length")
	}
	if _, err := st.CalibrateScreenFromDPI(110); err != nil {
		t.Errorf("recalibration after ResetScreen() failed: %v", err)
	}

	st.ResetFocalLength()
	if st.HasFocalLength() {
		t.Error("ResetFocalLength() kept focal length")
	}
	if !st.HasPPM() {
		t.Error("ResetFocalLength() dropped ppm")
	}

	st.Reset()
	if st.HasPPM() || st.HasFocalLength() {
		t.Errorf("Reset() left calibration behind: %+v", st)
	}
}

func TestHasFocalLengthNeedsReference(t *testing.T) {
	st := &State{FocalLengthPx: 900}
	if st.HasFocalLength() {
		t.Error("focal length without a reference measurement must not count as calibrated")
	}
}

func TestKindOf(t *testing.T) {
	err := Errorf(KindDetectionTooUnreliable, "eyes at %d px", 0)
	if KindOf(err) != KindDetectionTooUnreliable {
		t.Errorf("KindOf() = %q", KindOf(err))
	}
	if errors.Is(err, ErrUncalibratedState) {
		t.Error("errors of different kinds must not match")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf() of a plain error should be empty")
	}
}
