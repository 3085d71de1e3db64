package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// intrinsicsText renders camera intrinsics, or a placeholder when any of
// them is missing.
func intrinsicsText(fx, fy, cx, cy *float64) string {
	if fx == nil || fy == nil || cx == nil || cy == nil {
		return "Intrinsics: unavailable"
	}
	return fmt.Sprintf("Intrinsics (px)\nfx: %.2f\nfy: %.2f\ncx: %.2f\ncy: %.2f", *fx, *fy, *cx, *cy)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeDiagnostics(w io.Writer, a *app, intrinsics string) {
	fmt.Fprintf(w, "Version: %s\n", FullVersion)
	fmt.Fprintf(w, "System: %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(w, "Terminal: %s\n", yesNo(term.IsTerminal(int(os.Stdout.Fd()))))
	fmt.Fprintf(w, "Settings: %s\n", a.configPath)
	fmt.Fprintf(w, "History: %s\n", a.historyPath)
	fmt.Fprintf(w, "\n%s\n", intrinsics)
}

func newDiagnosticsCmd(a *app) *cobra.Command {
	var fx, fy, cx, cy float64

	c := &cobra.Command{
		Use:   "diagnostics",
		Short: "Show environment and camera intrinsics information",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			flag := func(name string, v *float64) *float64 {
				if c.Flags().Changed(name) {
					return v
				}
				return nil
			}
			writeDiagnostics(c.OutOrStdout(), a,
				intrinsicsText(flag("fx", &fx), flag("fy", &fy), flag("cx", &cx), flag("cy", &cy)))
		},
	}

	c.Flags().Float64Var(&fx, "fx", 0, "Horizontal focal length in pixels")
	c.Flags().Float64Var(&fy, "fy", 0, "Vertical focal length in pixels")
	c.Flags().Float64Var(&cx, "cx", 0, "Principal point x in pixels")
	c.Flags().Float64Var(&cy, "cy", 0, "Principal point y in pixels")

	return c
}
