package utm

import (
	"errors"
	"math"
	"testing"
	"time"

	"gnss-base/internal/gnss"
	"gnss-base/internal/pose"
)

// fakeTransform is a linear stand-in for a projection: it keeps inputs
// distinguishable per zone and hemisphere without doing geodesy.
type fakeTransform struct {
	zone   int
	north  bool
	closed bool
}

func (f *fakeTransform) Transform(lon, lat, alt float64) (float64, float64, float64) {
	x := lon*1000 + float64(f.zone)*1e6
	y := lat * 1000
	if !f.north {
		y += 1e7
	}
	return x, y, alt
}

func (f *fakeTransform) Close() error {
	f.closed = true
	return nil
}

type fakeFactory struct {
	calls []*fakeTransform
	err   error
}

func (f *fakeFactory) NewUTMTransform(zone int, north bool) (Transformer, error) {
	if f.err != nil {
		return nil, f.err
	}
	tr := &fakeTransform{zone: zone, north: north}
	f.calls = append(f.calls, tr)
	return tr, nil
}

func newTestConverter(t *testing.T) (*Converter, *fakeFactory) {
	t.Helper()
	ff := &fakeFactory{}
	c, err := NewConverter(ff, DefaultParams())
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}
	return c, ff
}

func testSolution() gnss.Solution {
	s := gnss.NewSolution(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.Latitude = 0
	s.Longitude = 9
	s.Altitude = 0
	s.DeviationLongitude = 1
	s.DeviationLatitude = 2
	s.DeviationAltitude = 3
	s.PositionType = gnss.Autonomous
	return s
}

func TestNewConverter_DefaultsBuildTransformEagerly(t *testing.T) {
	c, ff := newTestConverter(t)
	if c.Zone() != 32 || !c.North() {
		t.Fatalf("zone=%d north=%t want 32 true", c.Zone(), c.North())
	}
	if len(ff.calls) != 1 {
		t.Fatalf("factory calls=%d want 1", len(ff.calls))
	}
	if ff.calls[0].zone != 32 || !ff.calls[0].north {
		t.Fatalf("built transform=%+v", ff.calls[0])
	}
	if c.Err() != nil {
		t.Fatalf("Err()=%v", c.Err())
	}
}

func TestNewConverter_NilFactory(t *testing.T) {
	if _, err := NewConverter(nil, DefaultParams()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewConverter_FactoryErrorIsInitError(t *testing.T) {
	boom := errors.New("no such crs")
	_, err := NewConverter(&fakeFactory{err: boom}, DefaultParams())
	if !errors.Is(err, ErrTransformInit) {
		t.Fatalf("err=%v want ErrTransformInit", err)
	}
}

func TestConvert_NoSolutionProducesNothing(t *testing.T) {
	c, _ := newTestConverter(t)
	s := testSolution()
	s.PositionType = gnss.NoSolution
	if _, ok := c.Convert(s); ok {
		t.Fatalf("expected no output for no_solution")
	}

	// Regardless of the other fields.
	empty := gnss.NewSolution(time.Time{})
	empty.PositionType = gnss.NoSolution
	if _, ok := c.Convert(empty); ok {
		t.Fatalf("expected no output for empty no_solution")
	}
}

func TestConvert_ZeroDeviationsGiveZeroCovariance(t *testing.T) {
	c, _ := newTestConverter(t)
	s := testSolution()
	s.DeviationLatitude = 0
	s.DeviationLongitude = 0
	s.DeviationAltitude = 0
	out, ok := c.Convert(s)
	if !ok {
		t.Fatalf("expected output")
	}
	if out.PositionCov != (pose.Mat3{}) {
		t.Fatalf("cov=%v want zero", out.PositionCov)
	}
}

func TestConvert_CovarianceAxisPairing(t *testing.T) {
	c, _ := newTestConverter(t)
	out, ok := c.Convert(testSolution())
	if !ok {
		t.Fatalf("expected output")
	}
	if got := out.PositionCov.Diagonal(); got != (pose.Vec3{X: 1, Y: 4, Z: 9}) {
		t.Fatalf("cov diag=%+v want (1,4,9)", got)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && out.PositionCov[i][j] != 0 {
				t.Fatalf("cov[%d][%d]=%v want 0", i, j, out.PositionCov[i][j])
			}
		}
	}
}

func TestConvert_OriginSubtraction(t *testing.T) {
	c, ff := newTestConverter(t)
	s := testSolution()
	s.Altitude = 120
	x, y, z := ff.calls[0].Transform(s.Longitude, s.Latitude, s.Altitude)
	c.SetOrigin(pose.Vec3{X: x, Y: y, Z: z})

	out, ok := c.Convert(s)
	if !ok {
		t.Fatalf("expected output")
	}
	if out.Position != (pose.Vec3{}) {
		t.Fatalf("position=%+v want origin", out.Position)
	}

	c.SetOrigin(pose.Vec3{X: x - 10, Y: y + 5, Z: z - 1})
	out, _ = c.Convert(s)
	if out.Position != (pose.Vec3{X: 10, Y: -5, Z: 1}) {
		t.Fatalf("position=%+v want (10,-5,1)", out.Position)
	}
}

func TestConvert_CopiesTimestamp(t *testing.T) {
	c, _ := newTestConverter(t)
	s := testSolution()
	out, _ := c.Convert(s)
	if !out.Time.Equal(s.Time) {
		t.Fatalf("time=%v want %v", out.Time, s.Time)
	}
}

func TestSetZone_ChangesProjectionOnly(t *testing.T) {
	c, ff := newTestConverter(t)
	s := testSolution()
	before, _ := c.Convert(s)

	if err := c.SetZone(33); err != nil {
		t.Fatalf("SetZone() error: %v", err)
	}
	if !ff.calls[0].closed {
		t.Fatalf("expected previous transform to be closed")
	}
	after, ok := c.Convert(s)
	if !ok {
		t.Fatalf("expected output")
	}
	if after.Position == before.Position {
		t.Fatalf("position unchanged after zone change: %+v", after.Position)
	}
	if !after.Time.Equal(before.Time) || after.PositionCov != before.PositionCov {
		t.Fatalf("time/cov changed: %+v vs %+v", after, before)
	}
}

func TestSetHemisphere_RebuildsTransform(t *testing.T) {
	c, ff := newTestConverter(t)
	s := testSolution()
	before, _ := c.Convert(s)

	if err := c.SetHemisphere(false); err != nil {
		t.Fatalf("SetHemisphere() error: %v", err)
	}
	if len(ff.calls) != 2 || ff.calls[1].north {
		t.Fatalf("expected rebuilt southern transform, calls=%d", len(ff.calls))
	}
	after, _ := c.Convert(s)
	if after.Position.Y == before.Position.Y {
		t.Fatalf("northing unchanged after hemisphere change")
	}
	if after.PositionCov != before.PositionCov {
		t.Fatalf("cov changed")
	}
}

func TestSetZone_InvalidIsFatalUntilReconfigured(t *testing.T) {
	for _, zone := range []int{0, 61, -3} {
		c, _ := newTestConverter(t)
		err := c.SetZone(zone)
		if !errors.Is(err, ErrTransformInit) {
			t.Fatalf("zone=%d err=%v want ErrTransformInit", zone, err)
		}
		if c.Err() == nil {
			t.Fatalf("zone=%d expected Err() to be set", zone)
		}
		if _, ok := c.Convert(testSolution()); ok {
			t.Fatalf("zone=%d expected no output from broken converter", zone)
		}

		if err := c.SetZone(31); err != nil {
			t.Fatalf("SetZone(31) error: %v", err)
		}
		if _, ok := c.Convert(testSolution()); !ok {
			t.Fatalf("expected output after reconfiguration")
		}
	}
}

func TestConvert_UnknownValuesPropagate(t *testing.T) {
	c, _ := newTestConverter(t)
	s := testSolution()
	s.Altitude = gnss.Unknown()
	s.DeviationLatitude = gnss.Unknown()
	out, ok := c.Convert(s)
	if !ok {
		t.Fatalf("degraded data is not an error")
	}
	if !math.IsNaN(out.Position.Z) {
		t.Fatalf("z=%v want NaN", out.Position.Z)
	}
	if !math.IsNaN(out.PositionCov[1][1]) {
		t.Fatalf("cov[1][1]=%v want NaN", out.PositionCov[1][1])
	}
	if out.PositionCov[0][0] != 1 {
		t.Fatalf("cov[0][0]=%v want 1", out.PositionCov[0][0])
	}
}

func TestParams_RoundTrip(t *testing.T) {
	ff := &fakeFactory{}
	p := Params{Origin: pose.Vec3{X: 1, Y: 2, Z: 3}, Zone: 10, North: false}
	c, err := NewConverter(ff, p)
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}
	if c.Params() != p {
		t.Fatalf("params=%+v want %+v", c.Params(), p)
	}
}
