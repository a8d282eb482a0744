package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/acuity/pkg/client"
	"github.com/charlie0129/acuity/pkg/events"
)

func NewDistanceCommand() *cobra.Command {
	var left, right string

	cmd := &cobra.Command{
		Use:     "distance",
		Short:   "Estimate the viewing distance from eye positions in a photo",
		GroupID: gMeasurement,
		Example: `  acuity distance --left 310,250 --right 370,250`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := parseEyes(left, right)
			if err != nil {
				return err
			}

			m, err := apiClient.MeasureDistance(obs)
			if err != nil {
				return fmt.Errorf("failed to measure distance: %w", err)
			}

			cmd.Printf("Eye to screen: %s\n", bold("%s", formatMM(m.EyeToScreenMM)))
			cmd.Printf("  Camera to eye: %s\n", formatMM(m.CameraToEyeMM))
			cmd.Printf("  Eye distance in photo: %.1f px\n", m.IPDPx)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&left, "left", "", "left eye position as x,y")
	f.StringVar(&right, "right", "", "right eye position as x,y")

	return cmd
}

func NewSnapshotCommand() *cobra.Command {
	var calibrateAt string

	cmd := &cobra.Command{
		Use:     "snapshot <image>",
		Short:   "Detect eyes in a photo and estimate the viewing distance",
		GroupID: gMeasurement,
		Long: `Detect eyes in a photo and estimate the viewing distance.

The daemon must be configured with faceCascadePath and eyeCascadePath. With
--calibrate-at the photo also calibrates the camera focal length, taken at the
given distance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref float64
			if calibrateAt != "" {
				var err error
				if ref, err = parseDistance(calibrateAt); err != nil {
					return err
				}
			}

			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			res, err := apiClient.Snapshot(img, ref)
			if err != nil {
				return fmt.Errorf("failed to process snapshot: %w", err)
			}

			cmd.Printf("Image: %dx%d, %d eye pair(s) found\n", res.Frame.Width, res.Frame.Height, res.Pairs)
			cmd.Printf("  Eyes: (%.0f, %.0f) (%.0f, %.0f), %.1f px apart\n",
				res.Pair.Left.X, res.Pair.Left.Y, res.Pair.Right.X, res.Pair.Right.Y, res.IPDPx)
			if res.FocalLengthPx > 0 {
				cmd.Printf("Focal length: %s\n", bold("%.1f px", res.FocalLengthPx))
			}
			if res.FieldOfView != nil {
				cmd.Printf("Field of view: %.1f° x %.1f° (%.1f° diagonal)\n",
					res.FieldOfView.HorizontalDeg, res.FieldOfView.VerticalDeg, res.FieldOfView.DiagonalDeg)
			}
			if res.Distance != nil {
				cmd.Printf("Eye to screen: %s\n", bold("%s", formatMM(res.Distance.EyeToScreenMM)))
			} else {
				cmd.Println("Focal length is not calibrated, distance unknown. Use --calibrate-at.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&calibrateAt, "calibrate-at", "", "calibrate the focal length, the photo was taken at this distance (e.g. 50cm)")

	return cmd
}

func NewChartCommand() *cobra.Command {
	var (
		distance, style, letter string
		lines                   bool
	)

	cmd := &cobra.Command{
		Use:     "chart [acuity]",
		Short:   "Size an acuity chart for the calibrated screen",
		GroupID: gMeasurement,
		Long: `Size an acuity chart for the calibrated screen.

Prints the letter height for one acuity (6/12, 20/40 or decimal 0.5), or with
--lines the configured Snellen lines. Without --distance the configured
default viewing distance is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := client.ChartQuery{Style: style, Letter: letter}
			if len(args) == 1 {
				q.Acuity = args[0]
			}
			if distance != "" {
				d, err := parseDistance(distance)
				if err != nil {
					return err
				}
				q.ViewingDistanceMM = d
			}

			if lines {
				res, err := apiClient.GetChartLines(q)
				if err != nil {
					return fmt.Errorf("failed to get chart: %w", err)
				}

				cmd.Printf("%s chart at %s, %.3f px/mm\n", res.Style, formatMM(res.ViewingDistanceMM), res.PPMScreen)
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "LINE\tHEIGHT\tSTROKE\tTEXT")
				for _, l := range res.Lines {
					fmt.Fprintf(w, "%s\t%.1f px\t%.1f px\t%s\n", l.Label, l.LetterHeightPx, l.StrokePx, l.Text)
				}
				return w.Flush()
			}

			res, err := apiClient.GetChart(q)
			if err != nil {
				return fmt.Errorf("failed to get chart: %w", err)
			}

			cmd.Printf("%s at %s: %s\n", res.Acuity, formatMM(res.ViewingDistanceMM), bold("%.1f px", res.LetterHeightPx))
			cmd.Printf("  Stroke: %.1f px\n", res.StrokePx)
			cmd.Printf("  Text: %s (%s)\n", res.Text, res.Style)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&distance, "distance", "d", "", "viewing distance, e.g. 3m or 120in")
	f.StringVar(&style, "style", "", "chart style: sloan, classic or single")
	f.StringVar(&letter, "letter", "", "letter for the single style")
	f.BoolVar(&lines, "lines", false, "print every configured chart line")

	return cmd
}

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Print calibration and distance events as they happen",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for ev := range apiClient.SubscribeEvents(ctx) {
				logrus.WithFields(logrus.Fields{
					"event": ev.Name,
					"data":  string(ev.Data),
				}).Debug("new event")

				cmd.Println(describeEvent(ev))
			}

			return nil
		},
	}
}

func describeEvent(ev events.Event) string {
	switch ev.Name {
	case events.ScreenCalibrated:
		if p, err := events.DecodeAs[events.ScreenEvent](ev); err == nil {
			s := fmt.Sprintf("screen calibrated from %s: %.3f px/mm", p.Source, p.PPM)
			if p.Skewed {
				s += " (card skewed)"
			}
			return s
		}
	case events.FocalLengthCalibrated:
		if p, err := events.DecodeAs[events.FocalLengthEvent](ev); err == nil {
			return fmt.Sprintf("focal length calibrated: %.1f px at %s", p.FocalLengthPx, formatMM(p.ReferenceDistanceMM))
		}
	case events.CalibrationReset:
		if p, err := events.DecodeAs[events.ResetEvent](ev); err == nil {
			return fmt.Sprintf("calibration reset: %s", p.Scope)
		}
	case events.DistanceMeasured:
		if p, err := events.DecodeAs[events.DistanceEvent](ev); err == nil {
			return fmt.Sprintf("distance: %s", formatMM(p.EyeToScreenMM))
		}
	}
	return fmt.Sprintf("%s %s", ev.Name, ev.Data)
}
