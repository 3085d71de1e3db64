package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Hanaasagi/targetlock/internal"
	"github.com/Hanaasagi/targetlock/internal/presets"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/spf13/cobra"
)

type measureOptions struct {
	focal       float64
	pixels      float64
	top, bottom float64
	scale       float64
	height      float64
	preset      string
	pick        bool
	light       float64
	tracking    string
	calibration float64
	noSave      bool
	breakdown   bool
}

func newMeasureCmd(a *app) *cobra.Command {
	opts := &measureOptions{}

	c := &cobra.Command{
		Use:   "measure",
		Short: "Estimate the distance to a subject",
		Example: `  targetlock measure --focal 1000 --pixels 500 --height 2
  targetlock measure --focal 1500 --top 220 --bottom 860 --preset "adult male"
  targetlock measure --focal 1500 --pixels 300 --pick --light 1000 --tracking limited`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runMeasure(c, a, opts)
		},
	}

	f := c.Flags()
	f.Float64Var(&opts.focal, "focal", 0, "Focal length in pixels")
	f.Float64Var(&opts.pixels, "pixels", 0, "Subject height on the image in pixels")
	f.Float64Var(&opts.top, "top", 0, "Top of the subject in view points")
	f.Float64Var(&opts.bottom, "bottom", 0, "Bottom of the subject in view points")
	f.Float64Var(&opts.scale, "scale", 1, "Pixels per view point for --top/--bottom")
	f.Float64Var(&opts.height, "height", 0, "Real subject height in meters")
	f.StringVarP(&opts.preset, "preset", "p", "", "Use a preset height (fuzzy matched)")
	f.BoolVar(&opts.pick, "pick", false, "Choose a preset interactively")
	f.Float64Var(&opts.light, "light", 0, "Ambient light intensity in lumens")
	f.StringVar(&opts.tracking, "tracking", "normal", "Tracking quality: normal, limited or unavailable")
	f.Float64Var(&opts.calibration, "calibration", 0, "Focal length correction factor (overrides settings)")
	f.BoolVar(&opts.noSave, "no-save", false, "Do not record the measurement in the history")
	f.BoolVar(&opts.breakdown, "breakdown", false, "Show the confidence sub-scores")
	_ = c.MarkFlagRequired("focal")
	c.MarkFlagsMutuallyExclusive("height", "preset", "pick")
	c.MarkFlagsMutuallyExclusive("pixels", "top")
	c.MarkFlagsRequiredTogether("top", "bottom")

	return c
}

// pixelHeight resolves the pixel height from either --pixels or --top/--bottom.
func (o *measureOptions) pixelHeight(c *cobra.Command) (float64, error) {
	switch {
	case c.Flags().Changed("pixels"):
		return o.pixels, nil
	case c.Flags().Changed("top"):
		return measure.PixelHeight(o.top, o.bottom, o.scale), nil
	default:
		return 0, errors.New("either --pixels or --top and --bottom is required")
	}
}

// subjectHeight resolves the real height from --height, --preset or --pick.
func (o *measureOptions) subjectHeight(c *cobra.Command, a *app) (float64, string, error) {
	switch {
	case c.Flags().Changed("height"):
		return o.height, "", nil
	case o.preset != "":
		p, err := presets.Lookup(o.preset)
		if err != nil {
			return 0, "", err
		}
		return p.HeightMeters, p.Title, nil
	case o.pick:
		p, err := a.pick()
		if err != nil {
			return 0, "", fmt.Errorf("picking preset: %w", err)
		}
		return p.HeightMeters, p.Title, nil
	default:
		return 0, "", errors.New("one of --height, --preset or --pick is required")
	}
}

func runMeasure(c *cobra.Command, a *app, o *measureOptions) error {
	pixelHeight, err := o.pixelHeight(c)
	if err != nil {
		return err
	}
	height, presetTitle, err := o.subjectHeight(c, a)
	if err != nil {
		return err
	}
	tracking, err := measure.ParseTrackingQuality(o.tracking)
	if err != nil {
		return err
	}
	light := measure.NoLight
	if c.Flags().Changed("light") {
		light = measure.Light(o.light)
	}
	factor := a.settings.Get().Calibration
	if c.Flags().Changed("calibration") {
		factor = o.calibration
	}

	history, err := a.openHistory(!o.noSave)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	engine := measure.NewEngine(
		measure.WithHistory(history.History),
		measure.WithCalculator(measure.CalibratedCalculator{Factor: factor}),
	)

	res, err := engine.Measure(measure.Request{
		FocalLengthPixels: o.focal,
		RealHeightMeters:  height,
		PixelHeight:       pixelHeight,
		Light:             light,
		Tracking:          tracking,
	})
	if err != nil {
		return err
	}
	if err := saved(history); err != nil {
		return fmt.Errorf("measurement not recorded: %w", err)
	}

	out := c.OutOrStdout()
	if !res.Computable {
		fmt.Fprintln(out, "Distance: not computable (pixel height must be positive and inputs finite)")
		return nil
	}
	if presetTitle != "" {
		slog.Info("using preset", "preset", presetTitle)
		fmt.Fprintf(out, "Preset:     %s\n", presetTitle)
	}
	printResult(out, a, res, o.breakdown)
	return nil
}

func printResult(w io.Writer, a *app, res measure.Result, breakdown bool) {
	m := res.Measurement
	fmt.Fprintf(w, "Distance:   %s\n", units.FormatLength(m.DistanceMeters, a.unit))
	fmt.Fprintf(w, "Height:     %s\n", units.FormatLength(m.HeightMeters, a.unit))
	fmt.Fprintf(w, "Confidence: %s\n", internal.ConfidenceColor(m.Confidence).FgString(units.FormatPercent(m.Confidence)))

	if breakdown {
		b := res.Breakdown
		fmt.Fprintf(w, "  distance %.2f  pixel %.2f  light %.2f  tracking %.2f  raw %.3f\n",
			b.Distance, b.Pixel, b.Light, b.Tracking, b.Raw)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "%s %s\n", a.palette.Warning.FgString("Warning:"), warning)
	}
}
