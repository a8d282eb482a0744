package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/events"
)

// serve starts handler on a unix socket and returns a client for it.
func serve(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	// unix socket paths are length limited, t.TempDir() can be too long
	dir, err := os.MkdirTemp("", "acuity")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "d.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewUnstartedServer(handler)
	srv.Listener = l
	srv.Start()
	t.Cleanup(srv.Close)

	return NewClient(sock)
}

func TestSendDecodesCalibrationErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/distance", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"kind": "UncalibratedState", "message": "focal length is not calibrated"}`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message": "disk full"}`)
	})
	c := serve(t, mux)

	_, err := c.MeasureDistance(calibration.EyeObservation{})
	if !errors.Is(err, calibration.ErrUncalibratedState) {
		t.Fatalf("MeasureDistance() error = %v, want UncalibratedState", err)
	}
	if err.Error() != "focal length is not calibrated" {
		t.Errorf("message = %q", err.Error())
	}

	_, err = c.Get("/broken")
	if err == nil || calibration.KindOf(err) != "" || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Get(/broken) error = %v", err)
	}

	_, err = c.Get("/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(/missing) error = %v, want ErrNotFound", err)
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	c := serve(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"kind": "AlreadyCalibrated", "message": "reset it first"}`)
	}))

	_, err := c.Reset("screen")
	if calibration.KindOf(err) != calibration.KindAlreadyCalibrated {
		t.Errorf("KindOf(%v) = %q", err, calibration.KindOf(err))
	}
}

func TestTypedAPIs(t *testing.T) {
	var gotMethod, gotQuery, gotContentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"v1.2.3"`)
	})
	mux.HandleFunc("/screen/dpi", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = io.WriteString(w, "3.7795275590551185")
	})
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"frame": {"width": 640, "height": 480}, "pairs": 1, "ipdPx": 100}`)
	})
	mux.HandleFunc("/chart", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"letterHeightPx": 33.1}`)
	})
	c := serve(t, mux)

	v, err := c.GetVersion()
	if err != nil || v != "v1.2.3" {
		t.Errorf("GetVersion() = %q, %v", v, err)
	}

	ppm, err := c.CalibrateDPI(96)
	if err != nil || ppm < 3.77 || ppm > 3.78 {
		t.Errorf("CalibrateDPI() = %v, %v", ppm, err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("CalibrateDPI() used %s", gotMethod)
	}

	res, err := c.Snapshot([]byte{0xff, 0xd8}, 600)
	if err != nil || res.IPDPx != 100 || res.Frame.Width != 640 {
		t.Errorf("Snapshot() = %+v, %v", res, err)
	}
	if gotQuery != "referenceDistance=600" || gotContentType != "application/octet-stream" {
		t.Errorf("Snapshot() sent query %q, content type %q", gotQuery, gotContentType)
	}

	ch, err := c.GetChart(ChartQuery{Acuity: "6/6", ViewingDistanceMM: 3000})
	if err != nil || ch.LetterHeightPx != 33.1 {
		t.Errorf("GetChart() = %+v, %v", ch, err)
	}
	if gotQuery != "acuity=6%2F6&distance=3000" {
		t.Errorf("GetChart() sent query %q", gotQuery)
	}
}

func TestDaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.GetState()
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Errorf("GetState() error = %v, want ErrDaemonNotRunning", err)
	}
}

func TestStaleSocketMeansDaemonNotRunning(t *testing.T) {
	dir, err := os.MkdirTemp("", "acuity")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "stale.sock")
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: sock, Net: "unix"})
	if err != nil {
		t.Fatal(err)
	}
	// keep the file around like a daemon that was killed
	l.SetUnlinkOnClose(false)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = NewClient(sock).GetState()
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Errorf("GetState() error = %v, want ErrDaemonNotRunning", err)
	}
}

func TestReadEvents(t *testing.T) {
	stream := "event:calibration.screen\ndata:{\"ppm\":3.8,\"source\":\"dpi\",\"ts\":1}\n\n" +
		": keep-alive\n\n" +
		"event: calibration.reset\ndata: {\"scope\":\"all\",\"ts\":2}\n\n"

	ch := make(chan events.Event, 4)
	if err := readEvents(context.Background(), strings.NewReader(stream), ch); err != nil {
		t.Fatalf("readEvents() unexpected error: %v", err)
	}
	close(ch)

	var got []events.Event
	for ev := range ch {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}

	screen, err := events.DecodeAs[events.ScreenEvent](got[0])
	if err != nil || got[0].Name != events.ScreenCalibrated || screen.PPM != 3.8 {
		t.Errorf("first event = %s %+v, %v", got[0].Name, screen, err)
	}
	reset, err := events.DecodeAs[events.ResetEvent](got[1])
	if err != nil || got[1].Name != events.CalibrationReset || reset.Scope != "all" {
		t.Errorf("second event = %s %+v, %v", got[1].Name, reset, err)
	}
}

func TestSubscribeEventsStopsOnCancel(t *testing.T) {
	c := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event:distance.measured\ndata:{\"eyeToScreenMM\":500}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.SubscribeEvents(ctx)

	select {
	case ev := <-ch:
		if ev.Name != events.DistanceMeasured {
			t.Errorf("event = %q", ev.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel delivered after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
