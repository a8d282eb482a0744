package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/acuity/pkg/api"
	"github.com/charlie0129/acuity/pkg/calibration"
)

func NewScreenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "screen",
		Short:   "Calibrate the screen pixel density",
		GroupID: gCalibration,
	}

	cmd.AddCommand(newScreenCardCommand(), newScreenDPICommand())

	return cmd
}

func newScreenCardCommand() *cobra.Command {
	var (
		widthPx, heightPx     float64
		corners               []string
		cardWidth, cardHeight string
	)

	cmd := &cobra.Command{
		Use:   "card",
		Short: "Calibrate the screen with a credit card held against it",
		Long: `Calibrate the screen with a credit card held against it.

Resize an on-screen rectangle until it matches the card, then pass its size in
pixels with --width-px and/or --height-px. Alternatively pass the four corners
of the card (top-left, top-right, bottom-right, bottom-left) with --corner.

A standard ID-1 card (85.60 x 53.98 mm) is assumed unless the config or
--card-width / --card-height say otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req api.CardRequest
			if cmd.Flags().Changed("width-px") {
				req.WidthPx = &widthPx
			}
			if cmd.Flags().Changed("height-px") {
				req.HeightPx = &heightPx
			}
			for _, c := range corners {
				p, err := parsePoint(c)
				if err != nil {
					return err
				}
				req.Corners = append(req.Corners, p)
			}

			if cardWidth != "" || cardHeight != "" {
				if cardWidth == "" || cardHeight == "" {
					return fmt.Errorf("--card-width and --card-height must be given together")
				}
				w, err := parseDistance(cardWidth)
				if err != nil {
					return err
				}
				h, err := parseDistance(cardHeight)
				if err != nil {
					return err
				}
				req.Card = &calibration.CardSpec{WidthMM: w, HeightMM: h}
			}

			res, err := apiClient.CalibrateCard(req)
			if err != nil {
				return fmt.Errorf("failed to calibrate screen: %w", err)
			}

			cmd.Printf("Screen density: %s\n", bold("%.3f px/mm (%.1f dpi)", res.PPM, res.PPM*calibration.InchesToMM(1)))
			if res.Skewed {
				logrus.Warnf("card width and height disagree by %.1f%%, the card may be tilted. Run 'acuity reset screen' and measure again for a better result.", res.Discrepancy*100)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&widthPx, "width-px", 0, "card width on screen in pixels")
	f.Float64Var(&heightPx, "height-px", 0, "card height on screen in pixels")
	f.StringArrayVar(&corners, "corner", nil, "card corner as x,y (repeat four times)")
	f.StringVar(&cardWidth, "card-width", "", "physical card width, e.g. 85.6mm")
	f.StringVar(&cardHeight, "card-height", "", "physical card height, e.g. 53.98mm")

	return cmd
}

func newScreenDPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dpi <dpi>",
		Short: "Calibrate the screen from a known DPI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dpi, err := parseFloatArg(args, "dpi")
			if err != nil {
				return err
			}

			ppm, err := apiClient.CalibrateDPI(dpi)
			if err != nil {
				return fmt.Errorf("failed to calibrate screen: %w", err)
			}

			cmd.Printf("Screen density: %s\n", bold("%.3f px/mm", ppm))
			return nil
		},
	}
}

func NewFocalCommand() *cobra.Command {
	var (
		left, right   string
		distance, ipd string
	)

	cmd := &cobra.Command{
		Use:     "focal",
		Short:   "Calibrate the camera focal length at a known distance",
		GroupID: gCalibration,
		Long: `Calibrate the camera focal length at a known distance.

Sit at a measured distance from the camera, take a photo and pass the pixel
positions of both eyes. 'acuity snapshot --calibrate-at' does the same with
automatic eye detection.`,
		Example: `  acuity focal --left 300,240 --right 420,240 --distance 50cm`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := parseEyes(left, right)
			if err != nil {
				return err
			}
			ref, err := parseDistance(distance)
			if err != nil {
				return err
			}
			var ipdMM float64
			if ipd != "" {
				if ipdMM, err = parseDistance(ipd); err != nil {
					return err
				}
			}

			st, err := apiClient.CalibrateFocalLength(api.FocalLengthRequest{
				Observation:         obs,
				ReferenceDistanceMM: ref,
				RealIPDMM:           ipdMM,
			})
			if err != nil {
				return fmt.Errorf("failed to calibrate focal length: %w", err)
			}

			cmd.Printf("Focal length: %s\n", bold("%.1f px", st.FocalLengthPx))
			cmd.Printf("  from %s eyes %.1f px apart at %s\n", formatMM(st.RealIPDMM), st.ReferenceIPDPx, formatMM(st.ReferenceDistanceMM))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&left, "left", "", "left eye position as x,y")
	f.StringVar(&right, "right", "", "right eye position as x,y")
	f.StringVar(&distance, "distance", "", "distance from the camera, e.g. 50cm or 20in")
	f.StringVar(&ipd, "ipd", "", "real interpupillary distance, defaults to the configured value")
	_ = cmd.MarkFlagRequired("distance")

	return cmd
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "reset [all|screen|focal-length]",
		Short:     "Discard calibration so it can be redone",
		GroupID:   gCalibration,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all", "screen", "focal-length"},
		RunE: func(_ *cobra.Command, args []string) error {
			scope := "all"
			if len(args) == 1 {
				scope = args[0]
			}

			if _, err := apiClient.Reset(scope); err != nil {
				return fmt.Errorf("failed to reset calibration: %w", err)
			}

			logrus.Infof("successfully reset %s calibration", scope)
			return nil
		},
	}
}
