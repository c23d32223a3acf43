// Package pose holds the local-frame position samples produced from GNSS
// solutions.
package pose

import (
	"encoding/json"
	"math"
	"time"
)

// Vec3 is a position in a local Cartesian frame, in meters.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Diagonal returns the diagonal of m.
func (m Mat3) Diagonal() Vec3 {
	return Vec3{X: m[0][0], Y: m[1][1], Z: m[2][2]}
}

// Sample is a timestamped position with its covariance.
type Sample struct {
	Time        time.Time
	Position    Vec3
	PositionCov Mat3
}

type vec3JSON struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type sampleJSON struct {
	Time        time.Time      `json:"time"`
	Position    vec3JSON       `json:"position"`
	PositionCov [3][3]*float64 `json:"position_cov"`
}

// MarshalJSON writes NaN components as null so that degraded samples stay
// encodable. JSON has no infinities either: ±Inf is written as null too and
// reads back as NaN, so the sign of an infinite component is lost.
func (s Sample) MarshalJSON() ([]byte, error) {
	out := sampleJSON{
		Time: s.Time,
		Position: vec3JSON{
			X: finite(s.Position.X),
			Y: finite(s.Position.Y),
			Z: finite(s.Position.Z),
		},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.PositionCov[i][j] = finite(s.PositionCov[i][j])
		}
	}
	return json.Marshal(out)
}

func (s *Sample) UnmarshalJSON(b []byte) error {
	var in sampleJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	out := Sample{
		Time: in.Time,
		Position: Vec3{
			X: orNaN(in.Position.X),
			Y: orNaN(in.Position.Y),
			Z: orNaN(in.Position.Z),
		},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.PositionCov[i][j] = orNaN(in.PositionCov[i][j])
		}
	}
	*s = out
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
