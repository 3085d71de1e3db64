package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Hanaasagi/targetlock/internal"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// History entries are numbered from 1, newest first, in every subcommand.

func displayIndex(h *measure.History, number int) (int, error) {
	if number < 1 || number > h.Len() {
		return 0, fmt.Errorf("entry %d: %w (have %d)", number, measure.ErrIndexOutOfRange, h.Len())
	}
	return h.Len() - number, nil
}

// resolveEntry accepts a display number or a measurement ID.
func resolveEntry(h *measure.History, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		return displayIndex(h, n)
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return 0, fmt.Errorf("%q is neither an entry number nor a measurement id", ref)
	}
	i, ok := h.Find(id)
	if !ok {
		return 0, fmt.Errorf("measurement %s: %w", id, measure.ErrNotFound)
	}
	return i, nil
}

func confirmOnTTY(w io.Writer, prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Fprintf(w, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newHistoryCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Inspect and manage recorded measurements",
	}
	c.AddCommand(
		newHistoryListCmd(a),
		newHistoryStatsCmd(a),
		newHistoryRmCmd(a),
		newHistoryClearCmd(a),
		newHistoryShareCmd(a),
		newHistoryBrowseCmd(a),
	)
	return c
}

func newHistoryListCmd(a *app) *cobra.Command {
	var showIDs bool

	c := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List measurements, newest first",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(false)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if h.Len() == 0 {
				fmt.Fprintln(out, "No measurements yet.")
				return nil
			}

			all := h.All()
			width := len(strconv.Itoa(len(all)))
			for n := 1; n <= len(all); n++ {
				m := all[len(all)-n]
				values := units.Format(m.DistanceMeters, units.Some(m.HeightMeters), units.None, a.unit)
				conf := internal.ConfidenceColor(m.Confidence).FgString(units.FormatPercent(m.Confidence))
				fmt.Fprintf(out, "%*d. %s • %s\n", width, n, values, conf)
				fmt.Fprintf(out, "%*s  %s", width, "", m.Timestamp.Format(units.TimestampLayout))
				if showIDs {
					fmt.Fprintf(out, "  %s", m.ID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&showIDs, "ids", false, "Show measurement ids")
	return c
}

func newHistoryStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the recorded distances",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(false)
			if err != nil {
				return err
			}
			stats := h.Statistics()
			out := c.OutOrStdout()
			fmt.Fprintln(out, units.StatsText(stats, a.unit))
			if stats.OK {
				fmt.Fprintf(out, "StdDev: %s\n", units.FormatLength(stats.StdDevMeters, a.unit))
			}
			return nil
		},
	}
}

func newHistoryRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <number|id>",
		Short: "Delete one measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(true)
			if err != nil {
				return err
			}
			i, err := resolveEntry(h.History, args[0])
			if err != nil {
				return err
			}
			m, err := h.RemoveAt(i)
			if err != nil {
				return err
			}
			if err := saved(h); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Deleted %s\n",
				units.Format(m.DistanceMeters, units.Some(m.HeightMeters), units.Some(m.Confidence), a.unit))
			return nil
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "clear",
		Short: "Delete all measurements",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(true)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			if h.Len() == 0 {
				fmt.Fprintln(out, "No measurements yet.")
				return nil
			}
			if !yes && !a.confirm(out, fmt.Sprintf("Clear all %d measurements?", h.Len())) {
				return errors.New("not cleared (pass --yes to skip confirmation)")
			}
			n := h.Len()
			h.Clear()
			if err := saved(h); err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d measurements\n", n)
			return nil
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return c
}

func newHistoryShareCmd(a *app) *cobra.Command {
	var noCopy bool

	c := &cobra.Command{
		Use:   "share [number|id]",
		Short: "Print a measurement as text and copy it to the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(false)
			if err != nil {
				return err
			}
			ref := "1"
			if len(args) == 1 {
				ref = args[0]
			}
			i, err := resolveEntry(h.History, ref)
			if err != nil {
				return err
			}
			m, err := h.At(i)
			if err != nil {
				return err
			}

			text := units.ShareText(m, a.unit)
			fmt.Fprintln(c.OutOrStdout(), text)
			if noCopy {
				return nil
			}
			if err := a.copier.Copy(text); err != nil {
				return fmt.Errorf("copying to clipboard: %w", err)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&noCopy, "no-copy", false, "Only print, do not copy")
	return c
}

func newHistoryBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse measurements in a full-screen view",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			h, err := a.openHistory(true)
			if err != nil {
				return err
			}
			if err := a.browse(h.History, a.unit, a.palette, a.copier); err != nil {
				return err
			}
			return saved(h)
		},
	}
}
