package timeseries

// Daily input field names as written by collaborators.
const (
	FieldSleepHours  = "sleep_hours"
	FieldHRVRMSSD    = "hrv_rmssd"
	FieldHRVSDNN     = "hrv_sdnn"
	FieldRestingHR   = "resting_hr"
	FieldOvernightHR = "overnight_hr"
	FieldStress      = "stress"   // 1-10 ordinal
	FieldSoreness    = "soreness" // 1-10 ordinal
	FieldCarbs       = "carbs_g"
	FieldProtein     = "protein_g"
	FieldFat         = "fat_g"
	FieldWorkStress  = "work_stress" // 1-10 ordinal
)

// Chronic input fields derived by the aggregator from the activity corpus,
// consumed by the fitness causality loop.
const (
	FieldWeeklyVolume   = "weekly_volume_km"
	FieldThresholdShare = "threshold_share"
	FieldLongRunShare   = "long_run_share"
	FieldRunFrequency   = "run_frequency_7d"
	FieldACWR           = "acwr"
)

// ReduceRule says how multiple same-day observations of one field collapse
// to a single daily value.
type ReduceRule int

const (
	// ReduceLast keeps the latest-recorded observation of the day.
	ReduceLast ReduceRule = iota
	// ReduceMean averages repeated observations.
	ReduceMean
	// ReduceSum totals observations across the day.
	ReduceSum
)

// fieldReducers is the authoritative same-day reduction table. Macros
// accumulate across meals, ordinal scales take the last report of the day,
// repeated biometric readings average out. Unknown fields fall back to
// last-write.
var fieldReducers = map[string]ReduceRule{
	FieldSleepHours:  ReduceMean,
	FieldHRVRMSSD:    ReduceMean,
	FieldHRVSDNN:     ReduceMean,
	FieldRestingHR:   ReduceMean,
	FieldOvernightHR: ReduceMean,
	FieldStress:      ReduceLast,
	FieldSoreness:    ReduceLast,
	FieldWorkStress:  ReduceLast,
	FieldCarbs:       ReduceSum,
	FieldProtein:     ReduceSum,
	FieldFat:         ReduceSum,
}

// ReducerFor returns the same-day reduction rule for a field.
func ReducerFor(field string) ReduceRule {
	if r, ok := fieldReducers[field]; ok {
		return r
	}
	return ReduceLast
}

// AcuteFields lists the same-day-resolution inputs fed to the readiness
// causality loop.
func AcuteFields() []string {
	return []string{
		FieldSleepHours, FieldHRVRMSSD, FieldHRVSDNN,
		FieldRestingHR, FieldOvernightHR, FieldStress, FieldSoreness,
	}
}

// ChronicFields lists the weekly-resolution inputs fed to the fitness
// causality loop.
func ChronicFields() []string {
	return []string{
		FieldWeeklyVolume, FieldThresholdShare, FieldLongRunShare,
		FieldRunFrequency, FieldACWR,
	}
}
