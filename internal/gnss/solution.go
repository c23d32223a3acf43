package gnss

import "time"

// Solution is a position fix reported by a GNSS device, in WGS84.
type Solution struct {
	Time time.Time

	// Latitude and Longitude are in degrees.
	Latitude  float64
	Longitude float64

	PositionType SolutionType
	// Satellites is the number of satellites used in this solution.
	Satellites int

	// Altitude above mean sea level, in meters.
	Altitude float64
	// GeoidalSeparation is the difference between the WGS84 ellipsoid and
	// mean sea level (geoid); negative means mean sea level is below the
	// ellipsoid.
	GeoidalSeparation float64
	// AgeOfDifferentialCorrections in seconds; Unknown when no corrections
	// were applied.
	AgeOfDifferentialCorrections float64

	// 1-sigma deviations in meters.
	DeviationLatitude  float64
	DeviationLongitude float64
	DeviationAltitude  float64
}

// NewSolution returns a Solution stamped with t whose measurements are all
// Unknown and whose type is Invalid.
func NewSolution(t time.Time) Solution {
	return Solution{
		Time:                         t,
		Latitude:                     Unknown(),
		Longitude:                    Unknown(),
		PositionType:                 Invalid,
		Altitude:                     Unknown(),
		GeoidalSeparation:            Unknown(),
		AgeOfDifferentialCorrections: Unknown(),
		DeviationLatitude:            Unknown(),
		DeviationLongitude:           Unknown(),
		DeviationAltitude:            Unknown(),
	}
}

// Position is the position-only view of a fix.
type Position struct {
	Time time.Time

	Latitude                     float64
	Longitude                    float64
	PositionType                 SolutionType
	Satellites                   int
	Altitude                     float64
	GeoidalSeparation            float64
	AgeOfDifferentialCorrections float64
}

func NewPosition(t time.Time) Position {
	return Position{
		Time:                         t,
		Latitude:                     Unknown(),
		Longitude:                    Unknown(),
		PositionType:                 Invalid,
		Altitude:                     Unknown(),
		GeoidalSeparation:            Unknown(),
		AgeOfDifferentialCorrections: Unknown(),
	}
}

// Errors holds the 1-sigma deviations of a fix, in meters.
type Errors struct {
	Time time.Time

	DeviationLatitude  float64
	DeviationLongitude float64
	DeviationAltitude  float64
}

func NewErrors(t time.Time) Errors {
	return Errors{
		Time:               t,
		DeviationLatitude:  Unknown(),
		DeviationLongitude: Unknown(),
		DeviationAltitude:  Unknown(),
	}
}

// Position returns the position view of s.
func (s Solution) Position() Position {
	return Position{
		Time:                         s.Time,
		Latitude:                     s.Latitude,
		Longitude:                    s.Longitude,
		PositionType:                 s.PositionType,
		Satellites:                   s.Satellites,
		Altitude:                     s.Altitude,
		GeoidalSeparation:            s.GeoidalSeparation,
		AgeOfDifferentialCorrections: s.AgeOfDifferentialCorrections,
	}
}

// Errors returns the deviation view of s.
func (s Solution) Errors() Errors {
	return Errors{
		Time:               s.Time,
		DeviationLatitude:  s.DeviationLatitude,
		DeviationLongitude: s.DeviationLongitude,
		DeviationAltitude:  s.DeviationAltitude,
	}
}

// SolutionQuality carries dilution of precision and the PRNs of the
// satellites used in the solution.
type SolutionQuality struct {
	Time time.Time

	UsedSatellites []int
	PDOP           float64
	HDOP           float64
	VDOP           float64
}

func NewSolutionQuality(t time.Time) SolutionQuality {
	return SolutionQuality{
		Time: t,
		PDOP: Unknown(),
		HDOP: Unknown(),
		VDOP: Unknown(),
	}
}

// NumUsed is the number of satellites used in the solution.
func (q SolutionQuality) NumUsed() int { return len(q.UsedSatellites) }
