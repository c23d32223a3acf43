package gnss

import (
	"encoding/json"
	"time"
)

// solutionJSON is the wire shape of a Solution. Unknown values are omitted
// on output and absent or null values decode as Unknown.
type solutionJSON struct {
	Time time.Time `json:"time"`

	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	PositionType *SolutionType `json:"position_type,omitempty"`
	Satellites   int           `json:"satellites"`

	Altitude                     *float64 `json:"altitude,omitempty"`
	GeoidalSeparation            *float64 `json:"geoidal_separation,omitempty"`
	AgeOfDifferentialCorrections *float64 `json:"age_of_differential_corrections,omitempty"`

	DeviationLatitude  *float64 `json:"deviation_latitude,omitempty"`
	DeviationLongitude *float64 `json:"deviation_longitude,omitempty"`
	DeviationAltitude  *float64 `json:"deviation_altitude,omitempty"`
}

func (s Solution) MarshalJSON() ([]byte, error) {
	pt := s.PositionType
	return json.Marshal(solutionJSON{
		Time:                         s.Time,
		Latitude:                     optFloat(s.Latitude),
		Longitude:                    optFloat(s.Longitude),
		PositionType:                 &pt,
		Satellites:                   s.Satellites,
		Altitude:                     optFloat(s.Altitude),
		GeoidalSeparation:            optFloat(s.GeoidalSeparation),
		AgeOfDifferentialCorrections: optFloat(s.AgeOfDifferentialCorrections),
		DeviationLatitude:            optFloat(s.DeviationLatitude),
		DeviationLongitude:           optFloat(s.DeviationLongitude),
		DeviationAltitude:            optFloat(s.DeviationAltitude),
	})
}

func (s *Solution) UnmarshalJSON(b []byte) error {
	var w solutionJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := NewSolution(w.Time)
	out.Latitude = fromOpt(w.Latitude)
	out.Longitude = fromOpt(w.Longitude)
	if w.PositionType != nil {
		out.PositionType = *w.PositionType
	}
	out.Satellites = w.Satellites
	out.Altitude = fromOpt(w.Altitude)
	out.GeoidalSeparation = fromOpt(w.GeoidalSeparation)
	out.AgeOfDifferentialCorrections = fromOpt(w.AgeOfDifferentialCorrections)
	out.DeviationLatitude = fromOpt(w.DeviationLatitude)
	out.DeviationLongitude = fromOpt(w.DeviationLongitude)
	out.DeviationAltitude = fromOpt(w.DeviationAltitude)
	*s = out
	return nil
}
