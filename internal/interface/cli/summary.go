package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/daichi-lab/cgtutor/internal/usecase/summary"
)

func newSummaryCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate a participant log into a per-stage CSV summary",
		Long: `Summary reads a participant JSON Lines log, groups validate and
finalize events by chapter and stage, and writes <log>.stage_summary.csv
next to the input. Running it twice over the same log produces the same
output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			afs := afero.NewOsFs()

			res, err := summary.Aggregate(afs, logPath)
			if err != nil {
				return err
			}
			outPath, err := summary.WriteCSV(afs, res)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "summary written: %s\n", outPath)
			fmt.Fprintf(out, "total stalled seconds (finalized stages): %.3f\n", res.TotalStalledSeconds)
			for _, row := range res.Rows {
				stalled := "-"
				if row.StalledSeconds != nil {
					stalled = strconv.FormatFloat(*row.StalledSeconds, 'f', 3, 64)
				}
				completed := "-"
				if row.Completed != nil {
					completed = strconv.FormatBool(*row.Completed)
				}
				fmt.Fprintf(out, "  %s failures=%d stalled=%s completed=%s\n",
					row.Key, row.Failures, stalled, completed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "path", "", "participant log file to aggregate (required)")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
