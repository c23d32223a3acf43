package gnss

import "math"

// Unknown returns the sentinel used for float fields that were not reported.
func Unknown() float64 { return math.NaN() }

// IsUnknown reports whether v is the Unknown sentinel.
func IsUnknown(v float64) bool { return math.IsNaN(v) }

func optFloat(v float64) *float64 {
	if IsUnknown(v) {
		return nil
	}
	return &v
}

func fromOpt(p *float64) float64 {
	if p == nil {
		return Unknown()
	}
	return *p
}
