package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"trainsight/internal/service"
	"trainsight/internal/timeseries"
)

// insightsCmd emits the composer's structured context block as JSON. This
// is the machine-readable surface a downstream explanation layer consumes;
// `analyze` is the human-readable one.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Emit the analysis context block as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, closer, err := openAnalyzer()
		if err != nil {
			return err
		}
		defer closer()

		report, err := analyzer.Analyze(cmd.Context(), flagAthlete, service.Options{
			WindowDays: flagWindow,
		})
		if err != nil {
			return err
		}
		if report.Status == timeseries.StatusNoActivityData {
			return fmt.Errorf("no activity data for athlete %d in the last %d days",
				report.AthleteID, report.Window.Days)
		}

		out, err := json.MarshalIndent(report.Context, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
