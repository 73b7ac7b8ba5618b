package domain

import (
	"errors"
	"fmt"
)

// Field names of anomaly outputs, as reported in regional statistics.
const (
	CurrentName    = "rainfall_current"
	AbsoluteName   = "absolute_deviation"
	PercentageName = "percentage_deviation"
	ZScoreName     = "z_score"
)

// AnomalyResult holds the deviation of a period total from its baseline.
type AnomalyResult struct {
	Current    *Field
	Baseline   Baseline
	Absolute   *Field // current - mean, mm
	Percentage *Field // absolute / mean * 100
	ZScore     *Field // absolute / stddev
}

// ComputeAnomaly derives absolute, percentage and z-score anomalies of current
// against baseline. A zero mean makes the percentage no-data and a zero
// standard deviation makes the z-score no-data.
func ComputeAnomaly(current *Field, baseline Baseline) (AnomalyResult, error) {
	if current == nil {
		return AnomalyResult{}, errors.New("current field is required")
	}
	if baseline.Mean == nil || baseline.StdDev == nil {
		return AnomalyResult{}, errors.New("baseline is missing mean or standard deviation")
	}

	absolute, err := current.Subtract(baseline.Mean)
	if err != nil {
		return AnomalyResult{}, fmt.Errorf("absolute deviation: %w", err)
	}
	ratio, err := absolute.Divide(baseline.Mean)
	if err != nil {
		return AnomalyResult{}, fmt.Errorf("percentage deviation: %w", err)
	}
	zscore, err := absolute.Divide(baseline.StdDev)
	if err != nil {
		return AnomalyResult{}, fmt.Errorf("z-score: %w", err)
	}

	return AnomalyResult{
		Current:    current.Named(CurrentName),
		Baseline:   baseline,
		Absolute:   absolute.Named(AbsoluteName),
		Percentage: ratio.Scale(100).Named(PercentageName),
		ZScore:     zscore.Named(ZScoreName),
	}, nil
}

// Fields returns the fields summarized over a region, keyed by name.
func (r AnomalyResult) Fields() map[string]*Field {
	return map[string]*Field{
		BaselineMeanName: r.Baseline.Mean,
		CurrentName:      r.Current,
		AbsoluteName:     r.Absolute,
		PercentageName:   r.Percentage,
		ZScoreName:       r.ZScore,
	}
}
