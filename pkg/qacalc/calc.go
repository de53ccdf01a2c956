// Package qacalc implements the deviation calculators behind SASQART QA
// checks: percentage difference, positional deviation, dwell-time accuracy,
// timer linearity, transit reproducibility and radioactive source decay.
// All functions are pure; persistence of reference values is the caller's
// concern.
package qacalc

import (
	"fmt"
	"math"
)

// Result is the outcome of a single calculator run.
type Result struct {
	// Deviation is the computed deviation in the calculator's unit
	// (percent for ratio checks, millimetres for positional checks).
	Deviation float64 `json:"deviation"`
	// Verdict classifies Deviation against the supplied bands.
	Verdict Verdict `json:"verdict"`
	// Explanation is a short human-readable account of the computation.
	Explanation string `json:"explanation"`
}

// PercentDiff returns (measured − reference) / reference × 100 classified
// against the given tolerance bands. The reference must be non-zero.
func PercentDiff(reference, measured float64, tolerance, actionLevel *float64) (*Result, error) {
	if reference == 0 {
		return nil, fmt.Errorf("percentage difference undefined for zero reference")
	}
	dev := (measured - reference) / reference * 100
	return &Result{
		Deviation:   dev,
		Verdict:     Evaluate(dev, tolerance, actionLevel),
		Explanation: fmt.Sprintf("measured %.4g vs reference %.4g: %+.2f%%", measured, reference, dev),
	}, nil
}

// PositionDeviation returns the signed difference measured − expected in
// millimetres; the magnitude is compared against the tolerance.
func PositionDeviation(expected, measured float64, tolerance, actionLevel *float64) *Result {
	dev := measured - expected
	return &Result{
		Deviation:   dev,
		Verdict:     Evaluate(dev, tolerance, actionLevel),
		Explanation: fmt.Sprintf("measured %.2f mm vs expected %.2f mm: %+.2f mm", measured, expected, dev),
	}
}

// DwellTimeAccuracy returns (measured − set) / set × 100 for a single
// programmed dwell time.
func DwellTimeAccuracy(set, measured float64, tolerance, actionLevel *float64) (*Result, error) {
	if set == 0 {
		return nil, fmt.Errorf("dwell time accuracy undefined for zero set time")
	}
	dev := (measured - set) / set * 100
	return &Result{
		Deviation:   dev,
		Verdict:     Evaluate(dev, tolerance, actionLevel),
		Explanation: fmt.Sprintf("dwell %.2f s vs set %.2f s: %+.2f%%", measured, set, dev),
	}, nil
}

// TimerPair is one (set, measured) timer reading.
type TimerPair struct {
	Set      float64 `json:"set"`
	Measured float64 `json:"measured"`
}

// MaxTimerPairs is the number of timer settings a linearity check accepts.
const MaxTimerPairs = 4

// TimerLinearity computes the per-pair percentage deviation for up to four
// (set, measured) pairs and reports the pair with the largest magnitude.
func TimerLinearity(pairs []TimerPair, tolerance, actionLevel *float64) (*Result, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("timer linearity requires at least one (set, measured) pair")
	}
	if len(pairs) > MaxTimerPairs {
		return nil, fmt.Errorf("timer linearity accepts at most %d pairs, got %d", MaxTimerPairs, len(pairs))
	}
	var worst float64
	var worstPair TimerPair
	for _, p := range pairs {
		if p.Set == 0 {
			return nil, fmt.Errorf("timer linearity undefined for zero set time")
		}
		dev := (p.Measured - p.Set) / p.Set * 100
		if math.Abs(dev) >= math.Abs(worst) {
			worst = dev
			worstPair = p
		}
	}
	return &Result{
		Deviation: worst,
		Verdict:   Evaluate(worst, tolerance, actionLevel),
		Explanation: fmt.Sprintf("worst of %d settings at %.2f s: %+.2f%%",
			len(pairs), worstPair.Set, worst),
	}, nil
}

// TransitReproducibility computes the mean of the raw readings and reports
// the largest magnitude of (reading − mean) / mean × 100. At least two
// readings are required.
func TransitReproducibility(readings []float64, tolerance, actionLevel *float64) (*Result, error) {
	if len(readings) < 2 {
		return nil, fmt.Errorf("transit reproducibility requires at least 2 readings, got %d", len(readings))
	}
	var sum float64
	for _, r := range readings {
		sum += r
	}
	mean := sum / float64(len(readings))
	if mean == 0 {
		return nil, fmt.Errorf("transit reproducibility undefined for zero mean reading")
	}
	var worst float64
	for _, r := range readings {
		dev := (r - mean) / mean * 100
		if math.Abs(dev) > math.Abs(worst) {
			worst = dev
		}
	}
	return &Result{
		Deviation: worst,
		Verdict:   Evaluate(worst, tolerance, actionLevel),
		Explanation: fmt.Sprintf("%d readings, mean %.4g, max spread %+.2f%%",
			len(readings), mean, worst),
	}, nil
}
