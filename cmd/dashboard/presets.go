package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/contrib-dashboard/pkg/config"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

func newPresetsCmd() *cobra.Command {
	var now string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Print the date range presets for a reference date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			loc := cfg.Location()
			ref := time.Now().In(loc)
			if now != "" {
				parsed, ok := daterange.ParseInput(now, loc)
				if !ok {
					return fmt.Errorf("invalid --now %q, expected YYYY-MM-DD", now)
				}
				ref = parsed
			}
			return printPresets(cmd.OutOrStdout(), ref)
		},
	}
	cmd.Flags().StringVar(&now, "now", "", "reference date (YYYY-MM-DD), defaults to today")
	return cmd
}

func printPresets(out io.Writer, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPRESET\tSTART\tEND")
	for i, preset := range daterange.Presets(now) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, preset.Label,
			daterange.FormatDate(preset.Value.Start), daterange.FormatDate(preset.Value.End))
	}
	return w.Flush()
}
