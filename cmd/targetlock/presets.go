package main

import (
	"fmt"

	"github.com/Hanaasagi/targetlock/internal/presets"
	fz "github.com/Hanaasagi/targetlock/pkg/fuzzymatch"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [query]",
		Short: "List the preset subject heights",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			all := presets.All()
			out := c.OutOrStdout()

			if len(args) == 0 {
				for _, p := range all {
					fmt.Fprintf(out, "%-22s %s\n", p.Title, units.FormatLength(p.HeightMeters, a.unit))
				}
				return nil
			}

			matcher := fz.NewFuzzyMatcher(false)
			matches := matcher.Match(args[0], presets.Titles())
			if len(matches) == 0 {
				return fmt.Errorf("no preset matches %q", args[0])
			}
			for _, m := range matches {
				text := m.Text
				if !color.NoColor {
					text = matcher.HighlightMatch(m, "\x1b[33;1m", "\x1b[0m")
				}
				fmt.Fprintf(out, "%s  %s\n", text, units.FormatLength(all[m.Original].HeightMeters, a.unit))
			}
			return nil
		},
	}
}
