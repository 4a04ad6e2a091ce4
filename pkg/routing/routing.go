// Package routing abstracts driving-route estimation between two cities.
// The service only needs distance and duration figures for display; the
// actual map provider lives behind the Calculator interface so the rest of
// the codebase never talks to a mapping API directly.
package routing

import "errors"

// ErrUnavailable is returned when no route estimate can be produced.
var ErrUnavailable = errors.New("route estimate unavailable")

// Result holds a driving estimate between two points.
type Result struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
}

// Calculator produces driving estimates between two cities by name.
type Calculator interface {
	Estimate(startCity, endCity string) (*Result, error)
}

// NoopCalculator is the default Calculator. It reports every estimate as
// unavailable, which callers treat as "no figures to show".
type NoopCalculator struct{}

// NewNoopCalculator creates a NoopCalculator
func NewNoopCalculator() *NoopCalculator {
	return &NoopCalculator{}
}

// Estimate always returns ErrUnavailable.
func (c *NoopCalculator) Estimate(startCity, endCity string) (*Result, error) {
	return nil, ErrUnavailable
}
