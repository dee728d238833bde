package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"trainsight/internal/ghost"
)

// Config represents the application configuration
type Config struct {
	Athlete  AthleteConfig  `yaml:"athlete"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	RestingHR   float64 `yaml:"resting_hr"`
	MaxHR       float64 `yaml:"max_hr"`
	ThresholdHR float64 `yaml:"threshold_hr"`
}

// LoopConfig holds the tunables of one causality pass.
type LoopConfig struct {
	MinLag     int `yaml:"min_lag"`
	MaxLag     int `yaml:"max_lag"`
	MinSamples int `yaml:"min_samples"`
}

// CohortConfig holds the ghost-cohort tunables.
type CohortConfig struct {
	Size      int     `yaml:"size"`      // target N, 10-20
	Min       int     `yaml:"min"`       // below this: no comparable history
	Tolerance float64 `yaml:"tolerance"` // hard-filter band
}

// PatternConfig holds the classification thresholds.
type PatternConfig struct {
	Common       float64 `yaml:"common"`
	Prerequisite float64 `yaml:"prerequisite"`
}

// AnalysisConfig holds every analysis tunable. The similarity weights and
// thresholds are deliberately configuration, not constants.
type AnalysisConfig struct {
	WindowDays int           `yaml:"window_days"`
	RThreshold float64       `yaml:"r_threshold"`
	PThreshold float64       `yaml:"p_threshold"`
	MinSamples int           `yaml:"min_samples"`
	MaxLag     int           `yaml:"max_lag"`
	Readiness  LoopConfig    `yaml:"readiness"`
	Fitness    LoopConfig    `yaml:"fitness"`
	Cohort     CohortConfig  `yaml:"cohort"`
	Pattern    PatternConfig `yaml:"pattern"`
	Weights    ghost.Weights `yaml:"weights"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR:   50,
			MaxHR:       185,
			ThresholdHR: 165,
		},
		Analysis: AnalysisConfig{
			WindowDays: 90,
			RThreshold: 0.3,
			PThreshold: 0.05,
			MinSamples: 10,
			MaxLag:     14,
			Readiness:  LoopConfig{MinLag: 0, MaxLag: 7, MinSamples: 5},
			Fitness:    LoopConfig{MinLag: 14, MaxLag: 42, MinSamples: 4},
			Cohort:     CohortConfig{Size: 15, Min: 3, Tolerance: 0.15},
			Pattern:    PatternConfig{Common: 0.6, Prerequisite: 0.8},
			Weights:    ghost.DefaultWeights(),
		},
	}
}

// Load reads the configuration from ~/.trainsight/config.yaml
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.trainsight/config.yaml
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates a default config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	cfg := DefaultConfig()
	return Save(&cfg)
}

// Validate checks the configuration for values the engine would abort on.
func (c *Config) Validate() error {
	a := c.Analysis

	if a.WindowDays < 30 || a.WindowDays > 365 {
		return fmt.Errorf("analysis.window_days must be between 30 and 365, got %d", a.WindowDays)
	}
	if a.RThreshold <= 0 || a.RThreshold >= 1 {
		return fmt.Errorf("analysis.r_threshold must be in (0, 1), got %v", a.RThreshold)
	}
	if a.PThreshold <= 0 || a.PThreshold >= 1 {
		return fmt.Errorf("analysis.p_threshold must be in (0, 1), got %v", a.PThreshold)
	}
	if a.Cohort.Size < 10 || a.Cohort.Size > 20 {
		return fmt.Errorf("analysis.cohort.size must be between 10 and 20, got %d", a.Cohort.Size)
	}
	if a.Cohort.Min < 1 || a.Cohort.Min > a.Cohort.Size {
		return fmt.Errorf("analysis.cohort.min must be between 1 and cohort.size, got %d", a.Cohort.Min)
	}
	if a.Cohort.Tolerance <= 0 || a.Cohort.Tolerance >= 1 {
		return fmt.Errorf("analysis.cohort.tolerance must be in (0, 1), got %v", a.Cohort.Tolerance)
	}
	if a.Pattern.Common <= 0 || a.Pattern.Prerequisite <= a.Pattern.Common || a.Pattern.Prerequisite > 1 {
		return fmt.Errorf("analysis.pattern thresholds must satisfy 0 < common < prerequisite <= 1, got %v/%v",
			a.Pattern.Common, a.Pattern.Prerequisite)
	}
	if sum := a.Weights.Sum(); math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("analysis.weights must sum to 1.0, got %v", sum)
	}
	if a.Readiness.MinLag < 0 || a.Readiness.MaxLag < a.Readiness.MinLag {
		return fmt.Errorf("analysis.readiness lag range is invalid")
	}
	if a.Fitness.MinLag < 0 || a.Fitness.MaxLag < a.Fitness.MinLag {
		return fmt.Errorf("analysis.fitness lag range is invalid")
	}

	if c.Athlete.ThresholdHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)",
			c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trainsight", "config.yaml"), nil
}
