package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/acuity/pkg/calibration"
	"github.com/charlie0129/acuity/pkg/config"
	"github.com/charlie0129/acuity/pkg/version"
)

type statusJSON struct {
	State         *calibration.State    `json:"state"`
	Configuration *config.RawFileConfig `json:"configuration"`
	Ready         statusReadinessJSON   `json:"ready"`
}

type statusReadinessJSON struct {
	Chart    bool `json:"chart"`
	Distance bool `json:"distance"`
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gCalibration,
		Short:   "Get the current calibration and configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetState()
			if err != nil {
				return fmt.Errorf("failed to get calibration state: %w", err)
			}
			raw, err := apiClient.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statusJSON{
					State:         st,
					Configuration: raw,
					Ready: statusReadinessJSON{
						Chart:    st.HasPPM(),
						Distance: st.HasFocalLength(),
					},
				})
			}

			conf := config.NewFileFromConfig(raw, "")

			cmd.Println(bold("Screen:"))
			cmd.Println("  Calibrated: " + bool2Text(st.HasPPM()))
			if st.HasPPM() {
				cmd.Printf("  Density: %s (from %s)\n", bold("%.3f px/mm", st.PPMScreen), st.PPMSource)
			} else {
				cmd.Println("    Run 'acuity screen card' or 'acuity screen dpi' to draw charts.")
			}
			cmd.Println()

			cmd.Println(bold("Camera:"))
			cmd.Println("  Calibrated: " + bool2Text(st.HasFocalLength()))
			if st.HasFocalLength() {
				cmd.Printf("  Focal length: %s\n", bold("%.1f px", st.FocalLengthPx))
				cmd.Printf("  Reference: eyes %.1f px apart at %s\n", st.ReferenceIPDPx, formatMM(st.ReferenceDistanceMM))
				cmd.Printf("  Assumed IPD: %s\n", formatMM(st.RealIPDMM))
			} else {
				cmd.Println("    Run 'acuity focal' to measure viewing distances.")
			}
			if !st.UpdatedAt.IsZero() {
				cmd.Printf("  Last change: %s\n", color.New(color.Faint).Sprint(st.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
			}
			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Reference card: %s\n", bold("%.2f x %.2f mm", conf.CardWidthMM(), conf.CardHeightMM()))
			cmd.Printf("  Interpupillary distance: %s\n", bold("%.1f mm", conf.InterpupillaryDistanceMM()))
			cmd.Printf("  Camera offset: %s\n", bold("%.0f mm", conf.CameraOffsetMM()))
			cmd.Printf("  Default viewing distance: %s\n", bold("%s", formatMM(conf.DefaultViewingDistanceMM())))
			cmd.Printf("  Chart style: %s\n", bold("%s", conf.ChartStyle()))
			cmd.Printf("  Eye detection: %s\n", bool2Text(conf.FaceCascadePath() != "" && conf.EyeCascadePath() != ""))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}
