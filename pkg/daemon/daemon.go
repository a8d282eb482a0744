package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/config"
	"github.com/charlie0129/acuity/pkg/detector"
	"github.com/charlie0129/acuity/pkg/events"
)

// DetectorFactory builds the eye detector from the loaded config. It may
// return a nil Detector when detection is not configured.
type DetectorFactory func(conf config.Config) (detector.Detector, error)

// Options configure Run.
type Options struct {
	ConfigPath     string
	UnixSocketPath string
	AllowNonRoot   bool
	NewDetector    DetectorFactory
}

// Daemon owns the single active calibration and serves it over HTTP.
type Daemon struct {
	conf     config.Config
	detector detector.Detector
	hub      *events.EventHub

	// mu guards state and statePath.
	mu        sync.Mutex
	state     *calibration.State
	statePath string
}

// New creates a daemon around conf. The calibration state is loaded from
// statePath when it exists; an empty statePath disables persistence. A
// configured screen DPI calibrates the screen if the state has no density.
func New(conf config.Config, det detector.Detector, statePath string) *Daemon {
	d := &Daemon{
		conf:      conf,
		detector:  det,
		hub:       events.NewEventHub(),
		state:     calibration.NewState(),
		statePath: statePath,
	}
	d.loadState()

	st := d.snapshotState()
	if dpi := conf.ScreenDPI(); dpi > 0 && !st.HasPPM() {
		if _, err := d.calibrateFromDPI(dpi); err != nil {
			logrus.WithError(err).Warn("ignoring configured screen dpi")
		}
	}

	return d
}

func (d *Daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/version", getVersion)
	router.GET("/config", d.getConfig)
	router.GET("/state", d.getState)
	router.DELETE("/state", d.resetState)
	router.DELETE("/state/screen", d.resetScreen)
	router.DELETE("/state/focal-length", d.resetFocalLength)
	router.PUT("/screen/card", d.setScreenFromCard)
	router.PUT("/screen/dpi", d.setScreenFromDPI)
	router.PUT("/focal-length", d.setFocalLength)
	router.POST("/distance", d.measureDistance)
	router.POST("/snapshot", d.snapshot)
	router.GET("/chart", d.getChart)
	router.GET("/chart/lines", d.getChartLines)
	router.GET("/events", d.streamEvents)

	return router
}

func Run(opts Options) error {
	conf, err := config.NewFile(opts.ConfigPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	var det detector.Detector
	if opts.NewDetector != nil {
		det, err = opts.NewDetector(conf)
		if err != nil {
			logrus.Fatalf("failed to set up eye detector: %v", err)
		}
	}
	if det == nil {
		logrus.Warn("no eye detector configured, snapshots will be rejected")
	}

	d := New(conf, det, conf.StatePath())
	router := d.setupRoutes()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler: router,
	}

	// A stale socket from a previous crash would make Listen fail.
	if err := os.Remove(opts.UnixSocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("failed to remove stale socket %s: %v", opts.UnixSocketPath, err)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", opts.UnixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", opts.UnixSocketPath)
		err = os.Chmod(opts.UnixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	d.persistState()

	if det != nil {
		logrus.Info("closing eye detector")
		if err := det.Close(); err != nil {
			logrus.Errorf("failed to close eye detector: %v", err)
		}
	}

	logrus.Info("exiting")
	return nil
}
