package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/client"
	"github.com/charlie0129/acuity/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/acuity.sock"
	configPath     = "/etc/acuity.json"
)

var apiClient *client.Client

var (
	gCalibration  = "Calibration:"
	gMeasurement  = "Measurement:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gCalibration,
		gMeasurement,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// hints tell the user how to recover from each kind of calibration error.
var hints = map[calibration.Kind][]string{
	calibration.KindInvalidCalibrationInput: {
		"Check the measurement and try again. Lengths must be positive and the eyes must be two different points.",
	},
	calibration.KindUncalibratedState: {
		"Calibrate first:",
		"  - 'acuity screen card' or 'acuity screen dpi' before drawing charts",
		"  - 'acuity focal' or 'acuity snapshot --calibrate-at' before measuring distances",
	},
	calibration.KindDetectionTooUnreliable: {
		"Please retake the photo: face the camera in good light, with both eyes visible.",
	},
	calibration.KindInvalidChartSpec: {
		"Check the acuity (e.g. 6/12, 20/40 or 0.5), the chart style and the viewing distance.",
	},
	calibration.KindAlreadyCalibrated: {
		"Reset it first with 'acuity reset screen' or 'acuity reset focal-length'.",
	},
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: acuity daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'acuity daemon'.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or start the daemon with '--always-allow-non-root-access'")
	} else if lines, ok := hints[calibration.KindOf(err)]; ok {
		fmt.Fprintln(os.Stderr)
		for _, l := range lines {
			fmt.Fprintln(os.Stderr, l)
		}
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acuity",
		Short: "acuity sizes visual acuity charts for your screen and viewing distance",
		Long: `acuity sizes visual acuity charts for your screen and viewing distance.

Calibrate the screen with a credit card (or its DPI), calibrate the camera
once at a known distance, then measure how far you sit and draw Snellen
lines at their true angular size.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			if cmd.Name() == "daemon" {
				return nil
			}
			if daemonVersion, err := apiClient.GetVersion(); err == nil {
				if daemonVersion != version.Version {
					logrus.WithFields(logrus.Fields{
						"clientVersion": version.Version,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. Restart the daemon after upgrading.")
				}
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "acuity daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewScreenCommand(),
		NewFocalCommand(),
		NewResetCommand(),
		NewDistanceCommand(),
		NewSnapshotCommand(),
		NewChartCommand(),
		NewWatchCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
