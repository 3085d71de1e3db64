package main

import (
	"fmt"

	"github.com/Hanaasagi/targetlock/internal/settings"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return settings.Write(c.OutOrStdout(), a.settings.Get())
		},
	}

	get := &cobra.Command{
		Use:       "get <key>",
		Short:     "Print a single setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Keys,
		RunE: func(c *cobra.Command, args []string) error {
			v, err := settings.Get(a.settings.Get(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change a setting and save it",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settings.Keys,
		RunE: func(c *cobra.Command, args []string) error {
			next := a.settings.Get()
			if err := settings.Set(&next, args[0], args[1]); err != nil {
				return err
			}
			if err := a.settings.Update(func(s *settings.Settings) { *s = next }); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			v, _ := settings.Get(next, args[0])
			fmt.Fprintf(c.OutOrStdout(), "%s = %s\n", args[0], v)
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), a.configPath)
		},
	}

	c.AddCommand(show, get, set, path)
	return c
}
