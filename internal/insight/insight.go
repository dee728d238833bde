// Package insight converts qualifying analytical results into short,
// non-prescriptive statements plus one structured context block for the
// downstream explanation surface. Anything that failed its own component's
// threshold never produces a statement here.
package insight

import (
	"fmt"
	"sort"
	"time"

	"trainsight/internal/causality"
	"trainsight/internal/correlation"
	"trainsight/internal/ghost"
	"trainsight/internal/pattern"
	"trainsight/internal/timeseries"
)

// fieldLabels maps input field names to display names.
var fieldLabels = map[string]string{
	timeseries.FieldSleepHours:     "Sleep duration",
	timeseries.FieldHRVRMSSD:       "HRV (rMSSD)",
	timeseries.FieldHRVSDNN:        "HRV (SDNN)",
	timeseries.FieldRestingHR:      "Resting heart rate",
	timeseries.FieldOvernightHR:    "Overnight heart rate",
	timeseries.FieldStress:         "Subjective stress",
	timeseries.FieldSoreness:       "Subjective soreness",
	timeseries.FieldCarbs:          "Carbohydrate intake",
	timeseries.FieldProtein:        "Protein intake",
	timeseries.FieldFat:            "Fat intake",
	timeseries.FieldWorkStress:     "Work stress",
	timeseries.FieldWeeklyVolume:   "Weekly volume",
	timeseries.FieldThresholdShare: "Threshold-intensity share",
	timeseries.FieldLongRunShare:   "Long-run share",
	timeseries.FieldRunFrequency:   "Run frequency",
	timeseries.FieldACWR:           "Acute:chronic workload ratio",
}

// Label returns the display name for an input field.
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// IndicatorSummary is one field-labeled row of the context block.
type IndicatorSummary struct {
	Loop       string  `json:"loop"`
	Input      string  `json:"input"`
	LagDays    int     `json:"lag_days"`
	Confidence string  `json:"confidence"`
	Direction  string  `json:"direction"`
	PValue     float64 `json:"p_value"`
}

// BaselineSummary carries the ghost result for the context block.
type BaselineSummary struct {
	TargetID          int64   `json:"target_id"`
	Status            string  `json:"status"`
	CohortSize        int     `json:"cohort_size"`
	CohortBelowTarget bool    `json:"cohort_below_target"`
	TargetScore       float64 `json:"target_score"`
	MeanEfficiency    float64 `json:"mean_efficiency"`
}

// PatternSummary carries one classified feature for the context block.
type PatternSummary struct {
	Name           string  `json:"feature_name"`
	Classification string  `json:"classification"`
	FractionTrue   float64 `json:"fraction_true"`
	IsDeviation    bool    `json:"is_deviation_in_target"`
}

// ContextBlock is the structured summary handed to the external
// presentation/explanation layer. Fields only; transport is not defined
// here.
type ContextBlock struct {
	AthleteID    int64                `json:"athlete_id"`
	WindowDays   int                  `json:"window_days"`
	GeneratedAt  time.Time            `json:"generated_at"`
	Indicators   []IndicatorSummary   `json:"indicators"`
	Correlations []correlation.Result `json:"correlations"`
	Baseline     *BaselineSummary     `json:"baseline,omitempty"`
	Patterns     []PatternSummary     `json:"patterns,omitempty"`
}

// Compose builds the insight strings and the context block. Indicators at
// insufficient confidence contribute nothing; unclassified pattern
// features are never mentioned.
func Compose(athleteID int64, windowDays int,
	corr []correlation.Result, indicators []causality.Indicator,
	baseline *ghost.Baseline, features []pattern.Feature) ([]string, ContextBlock) {

	block := ContextBlock{
		AthleteID:   athleteID,
		WindowDays:  windowDays,
		GeneratedAt: time.Now().UTC(),
	}

	var statements []string

	for _, ind := range indicators {
		if ind.Confidence == causality.ConfidenceInsufficient {
			continue // never surfaced, anywhere
		}
		block.Indicators = append(block.Indicators, IndicatorSummary{
			Loop:       string(ind.Loop),
			Input:      ind.Input,
			LagDays:    ind.OptimalLag,
			Confidence: ind.Confidence.String(),
			Direction:  string(ind.Direction),
			PValue:     ind.PValue,
		})
		if s, ok := indicatorStatement(ind); ok {
			statements = append(statements, s)
		}
	}

	block.Correlations = corr
	for _, s := range correlationStatements(corr) {
		statements = append(statements, s)
	}

	if baseline != nil {
		block.Baseline = baselineSummary(baseline)
		if s, ok := baselineStatement(baseline); ok {
			statements = append(statements, s)
		}
	}

	for _, f := range features {
		if f.Classification == pattern.ClassNone {
			continue // unclassified facts are never reported
		}
		block.Patterns = append(block.Patterns, PatternSummary{
			Name:           f.Name,
			Classification: f.Classification.String(),
			FractionTrue:   f.FractionTrue,
			IsDeviation:    f.IsDeviation,
		})
		if f.IsDeviation {
			statements = append(statements, deviationStatement(f))
		}
	}

	return statements, block
}

// indicatorStatement renders one causal finding. The switch is exhaustive
// over the confidence tiers; adding a tier must be handled here.
func indicatorStatement(ind causality.Indicator) (string, bool) {
	var qualifier string
	switch ind.Confidence {
	case causality.ConfidenceHigh:
		qualifier = "strong evidence"
	case causality.ConfidenceModerate:
		qualifier = "moderate evidence"
	case causality.ConfidenceSuggestive:
		qualifier = "suggestive evidence"
	case causality.ConfidenceInsufficient:
		return "", false
	default:
		return "", false
	}

	return fmt.Sprintf("%s changes %s preceded efficiency shifts — %s, %s",
		Label(ind.Input), lagPhrase(ind.OptimalLag), formatP(ind.PValue), qualifier), true
}

// correlationStatements renders the best lag per input from the screened
// set. Every entry already cleared the significance bar.
func correlationStatements(results []correlation.Result) []string {
	best := make(map[string]correlation.Result)
	for _, r := range results {
		if cur, ok := best[r.Input]; !ok || r.PValue < cur.PValue {
			best[r.Input] = r
		}
	}

	inputs := make([]string, 0, len(best))
	for name := range best {
		inputs = append(inputs, name)
	}
	sort.Strings(inputs)

	var out []string
	for _, name := range inputs {
		r := best[name]
		// Efficiency is lower-is-better: a negative r means higher input
		// values went with improved efficiency.
		trend := "worsened"
		if r.R < 0 {
			trend = "improved"
		}
		out = append(out, fmt.Sprintf(
			"Higher %s went with %s efficiency %s (%s correlation, r=%.2f, %s, n=%d)",
			lowerFirst(Label(name)), trend, lagPhrase(r.LagDays), r.Strength, r.R, formatP(r.PValue), r.N))
	}
	return out
}

func baselineSummary(b *ghost.Baseline) *BaselineSummary {
	status := "ok"
	if b.Status == ghost.StatusNoComparableHistory {
		status = "no_comparable_history"
	}
	return &BaselineSummary{
		TargetID:          b.TargetID,
		Status:            status,
		CohortSize:        len(b.Cohort),
		CohortBelowTarget: b.CohortBelowTarget,
		TargetScore:       b.TargetScore,
		MeanEfficiency:    b.MeanEfficiency,
	}
}

func baselineStatement(b *ghost.Baseline) (string, bool) {
	if b.Status != ghost.StatusOK || b.TargetScore == 0 {
		return "", false
	}
	verdict := "behind"
	if b.TargetScore >= 100 {
		verdict = "ahead of"
	}
	s := fmt.Sprintf("This effort scored %.0f against %d comparable past efforts — %s your own baseline",
		b.TargetScore, len(b.Cohort), verdict)
	if b.CohortBelowTarget {
		s += " (small cohort)"
	}
	return s, true
}

func deviationStatement(f pattern.Feature) string {
	return fmt.Sprintf("%s held in %.0f%% of comparable efforts (%s) but not before this one",
		featureLabel(f.Name), f.FractionTrue*100, f.Classification)
}

var featureLabels = map[string]string{
	"tapered_volume_prior_week":   "Tapered volume in the prior week",
	"hard_session_within_48h":     "A hard session within 48h",
	"rest_day_prior":              "A rest day before",
	"above_median_sleep_prior_3d": "Above-median sleep in the prior 3 days",
	"above_median_hrv_prior_3d":   "Above-median HRV in the prior 3 days",
	"low_stress_prior_day":        "Low stress the day before",
	"acwr_in_band":                "A balanced workload ratio",
}

func featureLabel(name string) string {
	if l, ok := featureLabels[name]; ok {
		return l
	}
	return name
}

func lagPhrase(lag int) string {
	switch lag {
	case 0:
		return "the same day"
	case 1:
		return "1 day prior"
	default:
		return fmt.Sprintf("%d days prior", lag)
	}
}

func formatP(p float64) string {
	if p < 0.01 {
		return fmt.Sprintf("p=%.3f", p)
	}
	return fmt.Sprintf("p=%.2f", p)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	// Leave acronyms like HRV alone
	if len(r) > 1 && r[1] >= 'A' && r[1] <= 'Z' {
		return s
	}
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}
