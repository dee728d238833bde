package timeseries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trainsight/internal/store"
)

// Window bounds for the lookback, in days.
const (
	DefaultWindowDays = 90
	MinWindowDays     = 30
	MaxWindowDays     = 365
)

// ErrWindowOutOfRange is a configuration error: the requested lookback is
// outside [MinWindowDays, MaxWindowDays]. Unlike insufficient-data
// conditions it aborts the whole analysis call.
var ErrWindowOutOfRange = errors.New("lookback window out of range")

// ErrMalformedObservation is a configuration error: the stored corpus holds
// an observation whose date key does not parse. Corpus corruption aborts the
// whole analysis call; only per-pair statistical failures may shrink the
// result set.
var ErrMalformedObservation = errors.New("malformed observation date")

// Status distinguishes a usable snapshot from one with no activity data in
// the window.
type Status int

const (
	StatusOK Status = iota
	StatusNoActivityData
)

// Window is the resolved lookback range. End is exclusive.
type Window struct {
	Days  int
	Start time.Time
	End   time.Time
}

// Snapshot is the complete per-athlete table set one analysis call runs
// over. It is immutable once built; every engine downstream is a pure
// function of it.
type Snapshot struct {
	AthleteID  int64
	Window     Window
	AsOf       time.Time
	Status     Status
	Inputs     map[string]Series // acute + derived chronic, keyed by field
	Activities []store.Activity
	Efficiency Series // daily mean efficiency, lower is better
}

// Options configures one aggregation.
type Options struct {
	WindowDays int       // 0 means DefaultWindowDays
	AsOf       time.Time // zero means now
	MaxHR      float64   // for the threshold-intensity share; 0 disables it
}

// Aggregator builds per-athlete daily input tables and activity output
// tables from the stored corpus. All external data fetch for an analysis
// happens here; everything downstream is CPU-bound.
type Aggregator struct {
	store *store.Store
}

// NewAggregator creates an Aggregator over the given store.
func NewAggregator(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Build assembles the snapshot for one athlete and window.
func (a *Aggregator) Build(ctx context.Context, athleteID int64, opts Options) (*Snapshot, error) {
	days := opts.WindowDays
	if days == 0 {
		days = DefaultWindowDays
	}
	if days < MinWindowDays || days > MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days (allowed %d-%d)",
			ErrWindowOutOfRange, days, MinWindowDays, MaxWindowDays)
	}

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	end := Day(asOf).AddDate(0, 0, 1) // include the as-of day
	start := end.AddDate(0, 0, -days)
	window := Window{Days: days, Start: start, End: end}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obs, err := a.store.GetObservations(athleteID,
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("fetching observations: %w", err)
	}

	activities, err := a.store.GetActivitiesInRange(athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}

	inputs, err := reduceObservations(obs)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		AthleteID:  athleteID,
		Window:     window,
		AsOf:       asOf,
		Inputs:     inputs,
		Activities: activities,
	}
	snap.Efficiency = dailyEfficiency(activities)
	deriveChronic(snap, opts.MaxHR)

	if len(activities) == 0 {
		snap.Status = StatusNoActivityData
	}

	log.Debug().
		Int64("athlete", athleteID).
		Int("window_days", days).
		Int("observations", len(obs)).
		Int("activities", len(activities)).
		Msg("snapshot built")

	return snap, nil
}

// reduceObservations collapses long-form observations into one daily series
// per field using the per-field reduction table. Rows arrive ordered by
// (date, recorded_at), so for last-write fields the final row of a day wins.
// An unparseable date key means the corpus itself is bad and fails the
// whole reduction.
func reduceObservations(obs []store.DailyObservation) (map[string]Series, error) {
	type cell struct {
		sum   float64
		last  float64
		count int
	}
	cells := make(map[string]map[string]*cell)

	for _, o := range obs {
		byDate, ok := cells[o.Field]
		if !ok {
			byDate = make(map[string]*cell)
			cells[o.Field] = byDate
		}
		c, ok := byDate[o.Date]
		if !ok {
			c = &cell{}
			byDate[o.Date] = c
		}
		c.sum += o.Value
		c.last = o.Value
		c.count++
	}

	inputs := make(map[string]Series, len(cells))
	for field, byDate := range cells {
		rule := ReducerFor(field)
		s := make(Series, 0, len(byDate))
		for dateKey, c := range byDate {
			day, err := ParseDay(dateKey)
			if err != nil {
				return nil, fmt.Errorf("%w: %q (field %s)", ErrMalformedObservation, dateKey, field)
			}
			var v float64
			switch rule {
			case ReduceSum:
				v = c.sum
			case ReduceMean:
				v = c.sum / float64(c.count)
			case ReduceLast:
				v = c.last
			}
			s = append(s, Point{Date: day, Value: v})
		}
		inputs[field] = s.sorted()
	}
	return inputs, nil
}

// dailyEfficiency averages the efficiency metric of same-day activities.
// Days without an activity carrying the metric are absent.
func dailyEfficiency(activities []store.Activity) Series {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, act := range activities {
		if act.Efficiency == nil {
			continue
		}
		d := Day(act.StartTime)
		sums[d] += *act.Efficiency
		counts[d]++
	}

	s := make(Series, 0, len(sums))
	for d, sum := range sums {
		s = append(s, Point{Date: d, Value: sum / float64(counts[d])})
	}
	return s.sorted()
}
