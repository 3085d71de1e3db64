package main

import (
	"errors"
	"fmt"

	"github.com/Hanaasagi/targetlock/internal/settings"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/spf13/cobra"
)

func newCalibrateCmd(a *app) *cobra.Command {
	var (
		distance, height, pixels, focal float64
		save                            bool
	)

	c := &cobra.Command{
		Use:   "calibrate",
		Short: "Derive the focal length from a subject at a known distance",
		Example: `  targetlock calibrate --distance 4 --height 2 --pixels 500
  targetlock calibrate --distance 4 --height 2 --pixels 500 --focal 960 --save`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			f := measure.CalibrateFocalLength(distance, height, pixels)
			if f <= 0 {
				return errors.New("cannot calibrate: distance, height and pixels must all be positive")
			}

			out := c.OutOrStdout()
			fmt.Fprintf(out, "Focal length: %.1f px\n", f)

			if !c.Flags().Changed("focal") {
				if save {
					return errors.New("--save needs --focal to derive a correction factor")
				}
				return nil
			}
			if focal <= 0 {
				return errors.New("--focal must be positive")
			}

			factor := f / focal
			fmt.Fprintf(out, "Correction factor: %.4f\n", factor)
			if !save {
				return nil
			}
			if err := a.settings.Update(func(s *settings.Settings) { s.Calibration = factor }); err != nil {
				return fmt.Errorf("saving calibration: %w", err)
			}
			fmt.Fprintf(out, "Saved calibration to %s\n", a.configPath)
			return nil
		},
	}

	c.Flags().Float64Var(&distance, "distance", 0, "Known distance to the subject in meters")
	c.Flags().Float64Var(&height, "height", 0, "Real subject height in meters")
	c.Flags().Float64Var(&pixels, "pixels", 0, "Subject height on the image in pixels")
	c.Flags().Float64Var(&focal, "focal", 0, "Focal length the camera reports, to derive a correction factor")
	c.Flags().BoolVar(&save, "save", false, "Store the correction factor in the settings")
	for _, name := range []string{"distance", "height", "pixels"} {
		_ = c.MarkFlagRequired(name)
	}

	return c
}
