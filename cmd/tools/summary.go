package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"airquality-server/internal/modules/airquality/dataset"
	"airquality-server/internal/modules/airquality/pipeline"
	"airquality-server/internal/modules/airquality/types"
	"airquality-server/internal/modules/airquality/views"
)

func newSummaryCmd() *cobra.Command {
	var start, end string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the headline metrics of a dataset over a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := dataset.LoadFile(args[0])
			if err != nil {
				return err
			}
			first, last, ok := pipeline.Bounds(readings)
			if !ok {
				return fmt.Errorf("%s: %w", args[0], dataset.ErrEmpty)
			}
			if start != "" {
				if first, err = time.Parse(time.DateOnly, start); err != nil {
					return fmt.Errorf("invalid --start %q (expected YYYY-MM-DD)", start)
				}
			}
			if end != "" {
				if last, err = time.Parse(time.DateOnly, end); err != nil {
					return fmt.Errorf("invalid --end %q (expected YYYY-MM-DD)", end)
				}
			}

			res, err := pipeline.Run(readings, first, last)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Summary)
			}
			return writeSummary(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD), defaults to the first reading")
	cmd.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD), defaults to the last reading")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func writeSummary(w io.Writer, res pipeline.Result) error {
	fmt.Fprintf(w, "range:    %s .. %s\n", res.Start.Format(time.DateOnly), res.End.Format(time.DateOnly))
	fmt.Fprintf(w, "readings: %d\n", res.Summary.Readings)
	fmt.Fprintf(w, "months:   %d\n\n", res.Summary.Months)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "pollutant\tdiurnal\tdaily\tmonthly")
	for _, p := range types.Pollutants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p,
			views.FormatConcentration(res.Summary.Diurnal.Get(p)),
			views.FormatConcentration(res.Summary.Daily.Get(p)),
			views.FormatConcentration(res.Summary.Monthly.Get(p)),
		)
	}
	return tw.Flush()
}
