// Package service installs the acuity daemon as a systemd system service.
package service

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	unitDir  = "/etc/systemd/system"
	unitName = "acuity.service"
)

const unitTemplate = `[Unit]
Description=acuity visual acuity calibration daemon
After=network.target

[Service]
ExecStart={{exe}} daemon --config {{config}} --daemon-socket {{socket}}
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

// Unit renders the service unit for the given executable, config file and
// socket.
func Unit(exePath, configPath, socketPath string) string {
	return strings.NewReplacer(
		"{{exe}}", exePath,
		"{{config}}", configPath,
		"{{socket}}", socketPath,
	).Replace(unitTemplate)
}

func UnitPath() string {
	return filepath.Join(unitDir, unitName)
}

func Install(configPath, socketPath string) error {
	// Get the path to the current executable
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get the path to the current executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the current executable: %w", err)
	}

	err = os.Chmod(exePath, 0755)
	if err != nil {
		return fmt.Errorf("failed to chmod the current executable to 0755: %w", err)
	}

	logrus.Infof("current executable path: %s", exePath)
	logrus.Infof("writing systemd unit to %s", unitDir)

	err = os.MkdirAll(unitDir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", unitDir, err)
	}

	// warn if the file already exists
	_, err = os.Stat(UnitPath())
	if err == nil {
		logrus.Warnf("%s already exists, overwriting", UnitPath())
	}

	err = os.WriteFile(UnitPath(), []byte(Unit(exePath, configPath, socketPath)), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", UnitPath(), err)
	}

	logrus.Infof("starting acuity")

	err = systemctl("daemon-reload")
	if err != nil {
		return err
	}
	return systemctl("enable", "--now", unitName)
}

func Uninstall() error {
	logrus.Infof("stopping acuity")

	err := systemctl("disable", "--now", unitName)
	if err != nil {
		return fmt.Errorf("%w. Are you root?", err)
	}

	logrus.Infof("removing systemd unit")

	// if the file doesn't exist, we don't need to remove it
	_, err = os.Stat(UnitPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", UnitPath(), err)
	}

	err = os.Remove(UnitPath())
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w. Are you root?", UnitPath(), err)
	}

	return systemctl("daemon-reload")
}

func systemctl(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
