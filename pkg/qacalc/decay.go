package qacalc

import (
	"fmt"
	"math"
	"time"
)

// IridiumHalfLifeDays is the half-life of Ir-192, the HDR afterloader source
// these checks were written for.
const IridiumHalfLifeDays = 73.83

// DecayBands holds the percentage bands a decay check is classified against.
type DecayBands struct {
	Investigate float64
	Fail        float64
}

// DefaultDecayBands are the fixed regulatory bands: within 2% passes, within
// 5% warrants investigation, beyond 5% fails.
var DefaultDecayBands = DecayBands{Investigate: 2, Fail: 5}

// DecayedActivity returns A0·e^(−λt) with λ = ln2/halfLifeDays and t the
// elapsed time in days.
func DecayedActivity(a0, halfLifeDays float64, elapsed time.Duration) float64 {
	lambda := math.Ln2 / halfLifeDays
	t := elapsed.Hours() / 24
	return a0 * math.Exp(-lambda*t)
}

// DecayCheck compares the console-reported activity against the decay-law
// expectation for a source calibrated to activity a0 at calDate.
// Zero-valued bands fall back to DefaultDecayBands.
func DecayCheck(a0 float64, halfLifeDays float64, calDate time.Time, reported float64, at time.Time, bands DecayBands) (*Result, error) {
	if a0 <= 0 {
		return nil, fmt.Errorf("initial activity must be positive, got %g", a0)
	}
	if halfLifeDays <= 0 {
		return nil, fmt.Errorf("half-life must be positive, got %g", halfLifeDays)
	}
	if at.Before(calDate) {
		return nil, fmt.Errorf("measurement instant %s precedes calibration date %s",
			at.Format("2006-01-02"), calDate.Format("2006-01-02"))
	}
	if bands == (DecayBands{}) {
		bands = DefaultDecayBands
	}

	expected := DecayedActivity(a0, halfLifeDays, at.Sub(calDate))
	dev := (reported - expected) / expected * 100

	verdict := VerdictFail
	switch mag := math.Abs(dev); {
	case mag <= bands.Investigate:
		verdict = VerdictPass
	case mag <= bands.Fail:
		verdict = VerdictInvestigate
	}

	return &Result{
		Deviation: dev,
		Verdict:   verdict,
		Explanation: fmt.Sprintf("expected %.4g after %.1f days of decay, console reports %.4g: %+.2f%%",
			expected, at.Sub(calDate).Hours()/24, reported, dev),
	}, nil
}
