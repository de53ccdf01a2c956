package qacalc

// Verdict classifies a measured deviation against a test's tolerance bands.
type Verdict string

const (
	// VerdictNone means no numeric tolerance applies, so nothing was classified.
	VerdictNone Verdict = ""
	// VerdictPass means the deviation is within tolerance.
	VerdictPass Verdict = "pass"
	// VerdictInvestigate means the deviation exceeds tolerance but not the action level.
	VerdictInvestigate Verdict = "investigate"
	// VerdictFail means the deviation exceeds the action level (or the
	// tolerance, when no action level is defined).
	VerdictFail Verdict = "fail"
)

// bandEpsilon absorbs float drift in computed deviations. A reading landing
// exactly on a band boundary must classify into the band, not past it:
// (29.4-30)/30*100 is -2.0000000000000004, still a 2% deviation.
const bandEpsilon = 1e-9

func withinBand(mag, limit float64) bool {
	return mag <= limit+bandEpsilon*(1+limit)
}

// Evaluate applies the shared verdict policy to an absolute deviation.
// tolerance and actionLevel are optional: a nil tolerance yields VerdictNone,
// and a nil action level makes the tolerance the fail line.
func Evaluate(deviation float64, tolerance, actionLevel *float64) Verdict {
	if tolerance == nil {
		return VerdictNone
	}
	mag := deviation
	if mag < 0 {
		mag = -mag
	}
	if withinBand(mag, *tolerance) {
		return VerdictPass
	}
	if actionLevel != nil && withinBand(mag, *actionLevel) {
		return VerdictInvestigate
	}
	return VerdictFail
}
