package cli

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"trainsight/internal/service"
	"trainsight/internal/timeseries"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the correlation and causality analysis for an athlete",
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
			fmt.Printf("No activity data for athlete %d in the last %d days.\n",
				report.AthleteID, report.Window.Days)
			return nil
		}

		fmt.Printf("Analysis for athlete %d, last %d days\n\n", report.AthleteID, report.Window.Days)

		if len(report.Efficiency) >= 2 {
			fmt.Println("Daily efficiency (lower is better):")
			fmt.Println(asciigraph.Plot(report.Efficiency.Values(),
				asciigraph.Height(8), asciigraph.Width(60)))
			fmt.Println()
		}

		if len(report.Insights) == 0 {
			fmt.Println("No statistically qualifying findings in this window.")
			return nil
		}
		for _, s := range report.Insights {
			fmt.Printf("  • %s\n", s)
		}

		fmt.Printf("\nIndicators: %d  Significant correlations: %d\n",
			len(report.Indicators), len(report.Correlations))
		return nil
	},
}
