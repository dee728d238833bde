package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trainsight/internal/ghost"
	"trainsight/internal/service"
)

var ghostCmd = &cobra.Command{
	Use:   "ghost <activity-id>",
	Short: "Score one activity against its ghost cohort of comparable past efforts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		activityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid activity id %q", args[0])
		}

		analyzer, closer, err := openAnalyzer()
		if err != nil {
			return err
		}
		defer closer()

		report, err := analyzer.CompareActivity(cmd.Context(), flagAthlete, activityID,
			service.Options{WindowDays: flagWindow})
		if err != nil {
			return err
		}

		b := report.Baseline
		if b.Status == ghost.StatusNoComparableHistory {
			fmt.Printf("Insufficient comparable history for activity %d (%d candidates survived the filters).\n",
				activityID, len(b.Cohort))
			return nil
		}

		fmt.Printf("Ghost baseline for activity %d (cohort of %d)\n", activityID, len(b.Cohort))
		if b.CohortBelowTarget {
			fmt.Println("  note: cohort smaller than target size")
		}
		fmt.Printf("  cohort mean efficiency: %.3f\n", b.MeanEfficiency)
		if b.MeanPaceSecPerKm > 0 {
			fmt.Printf("  cohort mean pace:       %s/km\n", formatPace(b.MeanPaceSecPerKm))
		}
		if b.MeanHeartrate > 0 {
			fmt.Printf("  cohort mean HR:         %.0f bpm\n", b.MeanHeartrate)
		}
		if b.TargetScore > 0 {
			fmt.Printf("  target score:           %.0f (above 100 = ahead of your own history)\n", b.TargetScore)
		}

		for _, s := range report.Insights {
			fmt.Printf("  • %s\n", s)
		}
		return nil
	},
}

func formatPace(secPerKm float64) string {
	m := int(secPerKm) / 60
	s := int(secPerKm) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
