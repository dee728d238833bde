// Package service orchestrates one athlete's analysis: the aggregator runs
// first, then the correlation and causality engines concurrently. The
// comparator branch (ghost, then pattern) is target-scoped and runs per
// activity. Different athletes share nothing mutable, so their runs are
// fully independent.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"trainsight/internal/causality"
	"trainsight/internal/config"
	"trainsight/internal/correlation"
	"trainsight/internal/ghost"
	"trainsight/internal/insight"
	"trainsight/internal/pattern"
	"trainsight/internal/store"
	"trainsight/internal/timeseries"
)

// Report is the output of one full analysis call. It is recomputed in full
// every time; nothing here is ever patched in place.
type Report struct {
	AthleteID    int64
	Window       timeseries.Window
	Status       timeseries.Status
	Correlations []correlation.Result
	Indicators   []causality.Indicator
	Insights     []string
	Context      insight.ContextBlock
	Efficiency   timeseries.Series
}

// ActivityReport is the comparator branch's output for one target effort.
type ActivityReport struct {
	Baseline ghost.Baseline
	Features []pattern.Feature
	Insights []string
	Context  insight.ContextBlock
}

// Options configures one analysis call.
type Options struct {
	WindowDays int       // 0 means the configured default
	AsOf       time.Time // zero means now; non-zero bypasses the cache
}

// Analyzer runs per-athlete analyses over the stored corpus.
type Analyzer struct {
	store *store.Store
	cfg   config.Config
	cache *snapshotCache
}

// New creates an Analyzer.
func New(s *store.Store, cfg config.Config) *Analyzer {
	return &Analyzer{store: s, cfg: cfg, cache: newSnapshotCache()}
}

// Analyze runs the correlation and causality branches for one athlete.
// Results for the default as-of time are cached per (athlete, window,
// as-of day); concurrent callers for the same key share one in-flight
// computation.
func (a *Analyzer) Analyze(ctx context.Context, athleteID int64, opts Options) (*Report, error) {
	windowDays := opts.WindowDays
	if windowDays == 0 {
		windowDays = a.cfg.Analysis.WindowDays
	}

	if !opts.AsOf.IsZero() {
		// Historical as-of queries are never cached.
		return a.analyze(ctx, athleteID, windowDays, opts.AsOf)
	}

	today := timeseries.Day(time.Now().UTC()).Format("2006-01-02")
	return a.cache.get(ctx, athleteID, windowDays, today, func(ctx context.Context) (*Report, error) {
		return a.analyze(ctx, athleteID, windowDays, time.Time{})
	})
}

func (a *Analyzer) analyze(ctx context.Context, athleteID int64, windowDays int, asOf time.Time) (*Report, error) {
	started := time.Now()

	snap, err := a.buildSnapshot(ctx, athleteID, windowDays, asOf)
	if err != nil {
		return nil, err
	}

	report := &Report{
		AthleteID:  athleteID,
		Window:     snap.Window,
		Status:     snap.Status,
		Efficiency: snap.Efficiency,
	}
	if snap.Status == timeseries.StatusNoActivityData {
		log.Info().Int64("athlete", athleteID).Msg("no activity data in window")
		return report, nil
	}

	// The engines are pure functions of the snapshot, so the branches are
	// safe to run concurrently. Parallelism here is a latency
	// optimization only.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Correlations = correlation.Screen(snap, a.correlationConfig())
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		readiness := causality.Search(snap, a.loopConfig(causality.ReadinessConfig(), a.cfg.Analysis.Readiness))
		fitness := causality.Search(snap, a.loopConfig(causality.FitnessConfig(), a.cfg.Analysis.Fitness))
		report.Indicators = append(readiness, fitness...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Insights, report.Context = insight.Compose(
		athleteID, snap.Window.Days, report.Correlations, report.Indicators, nil, nil)

	log.Info().
		Int64("athlete", athleteID).
		Int("correlations", len(report.Correlations)).
		Int("indicators", len(report.Indicators)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")
	return report, nil
}

// CompareActivity runs the comparator branch for one target effort:
// ghost-cohort ranking, then pattern recognition over the cohort.
func (a *Analyzer) CompareActivity(ctx context.Context, athleteID, activityID int64, opts Options) (*ActivityReport, error) {
	target, err := a.store.GetActivity(activityID)
	if err != nil {
		return nil, err
	}
	if target.AthleteID != athleteID {
		return nil, fmt.Errorf("%w: activity %d does not belong to athlete %d",
			store.ErrActivityNotFound, activityID, athleteID)
	}

	windowDays := opts.WindowDays
	if windowDays == 0 {
		windowDays = a.cfg.Analysis.WindowDays
	}
	snap, err := a.buildSnapshot(ctx, athleteID, windowDays, opts.AsOf)
	if err != nil {
		return nil, err
	}

	baseline := ghost.Compare(*target, snap.Activities, a.ghostConfig())

	var features []pattern.Feature
	if baseline.Status == ghost.StatusOK {
		features = pattern.Recognize(snap, *target, baseline.Cohort, a.patternConfig())
	}

	insights, block := insight.Compose(athleteID, snap.Window.Days, nil, nil, &baseline, features)
	return &ActivityReport{
		Baseline: baseline,
		Features: features,
		Insights: insights,
		Context:  block,
	}, nil
}

// RecordObservation writes one daily input and invalidates the athlete's
// cached analyses wholesale.
func (a *Analyzer) RecordObservation(o *store.DailyObservation) error {
	if err := a.store.InsertObservation(o); err != nil {
		return err
	}
	a.cache.invalidate(o.AthleteID)
	return nil
}

// RecordActivity writes one activity output and invalidates the athlete's
// cached analyses wholesale.
func (a *Analyzer) RecordActivity(act *store.Activity) error {
	if err := a.store.UpsertActivity(act); err != nil {
		return err
	}
	a.cache.invalidate(act.AthleteID)
	return nil
}

func (a *Analyzer) buildSnapshot(ctx context.Context, athleteID int64, windowDays int, asOf time.Time) (*timeseries.Snapshot, error) {
	agg := timeseries.NewAggregator(a.store)
	return agg.Build(ctx, athleteID, timeseries.Options{
		WindowDays: windowDays,
		AsOf:       asOf,
		MaxHR:      a.cfg.Athlete.MaxHR,
	})
}

func (a *Analyzer) correlationConfig() correlation.Config {
	return correlation.Config{
		MaxLag:     a.cfg.Analysis.MaxLag,
		MinSamples: a.cfg.Analysis.MinSamples,
		RThreshold: a.cfg.Analysis.RThreshold,
		PThreshold: a.cfg.Analysis.PThreshold,
	}
}

// loopConfig overlays file-configured lag ranges and floors onto a loop's
// built-in defaults.
func (a *Analyzer) loopConfig(base causality.Config, override config.LoopConfig) causality.Config {
	if override.MaxLag > 0 {
		base.MinLag = override.MinLag
		base.MaxLag = override.MaxLag
	}
	if override.MinSamples > 0 {
		base.MinSamples = override.MinSamples
	}
	return base
}

func (a *Analyzer) ghostConfig() ghost.Config {
	return ghost.Config{
		Tolerance:  a.cfg.Analysis.Cohort.Tolerance,
		CohortSize: a.cfg.Analysis.Cohort.Size,
		MinCohort:  a.cfg.Analysis.Cohort.Min,
		Weights:    a.cfg.Analysis.Weights,
		MaxHR:      a.cfg.Athlete.MaxHR,
	}
}

func (a *Analyzer) patternConfig() pattern.Config {
	return pattern.Config{
		CommonThreshold:       a.cfg.Analysis.Pattern.Common,
		PrerequisiteThreshold: a.cfg.Analysis.Pattern.Prerequisite,
		MaxHR:                 a.cfg.Athlete.MaxHR,
	}
}
