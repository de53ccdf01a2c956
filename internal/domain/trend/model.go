package trend

import "time"

// Point is one numeric measurement on a series, taken from a report line item.
type Point struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Verdict *string   `json:"verdict,omitempty"`
}

// Series is the time series for one test on one piece of equipment, with the
// current baseline and its tolerance bands joined in for charting.
type Series struct {
	TestID      string   `json:"test_id"`
	Description string   `json:"description,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Points      []Point  `json:"points"`
	Baseline    *float64 `json:"baseline,omitempty"`
	Tolerance   *float64 `json:"tolerance,omitempty"`
	ActionLevel *float64 `json:"action_level,omitempty"`
	Mean        float64  `json:"mean"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
}
