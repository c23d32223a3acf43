package gnss

import "time"

// Satellite is one entry of a visibility scan. Elevation and azimuth are in
// degrees.
type Satellite struct {
	PRN       int
	Elevation int
	Azimuth   int
	SNR       float64
}

// NewSatellite returns a Satellite with an Unknown SNR.
func NewSatellite(prn, elevation, azimuth int) Satellite {
	return Satellite{PRN: prn, Elevation: elevation, Azimuth: azimuth, SNR: Unknown()}
}

// Constellation classifies the satellite from its PRN.
func (s Satellite) Constellation() Constellation {
	return ConstellationFromPRN(s.PRN)
}

// SatelliteInfo lists satellites in scan order. Entries are not
// deduplicated by PRN.
type SatelliteInfo struct {
	Time       time.Time
	Satellites []Satellite
}

// CountByConstellation tallies the listed satellites per constellation.
// Duplicate PRNs are counted once per entry.
func (si SatelliteInfo) CountByConstellation() map[Constellation]int {
	out := make(map[Constellation]int)
	for _, s := range si.Satellites {
		out[s.Constellation()]++
	}
	return out
}

// ConstellationInfo is the full quality picture for one reporting epoch.
type ConstellationInfo struct {
	Quality    SolutionQuality
	Satellites SatelliteInfo
}
