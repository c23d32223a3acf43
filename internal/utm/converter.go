// Package utm converts GNSS solutions into local Cartesian pose samples
// through a UTM projection.
//
// The projection itself is delegated to a TransformFactory; this package
// only manages zone/hemisphere configuration, the local origin and the
// mapping of solution fields onto a pose sample. A Converter is not safe for
// concurrent use.
package utm

import (
	"errors"
	"fmt"
	"io"

	"gnss-base/internal/gnss"
	"gnss-base/internal/pose"
)

const (
	MinZone = 1
	MaxZone = 60

	DefaultZone = 32
)

// ErrTransformInit is wrapped by every error caused by a transform that
// could not be built.
var ErrTransformInit = errors.New("failed to initialize coordinate transform")

// Transformer projects one WGS84 (longitude, latitude, altitude) triple into
// (easting, northing, altitude). Values it cannot project come back NaN.
type Transformer interface {
	Transform(lon, lat, alt float64) (x, y, z float64)
}

// TransformFactory builds the WGS84 geographic to WGS84/UTM transform for a
// zone and hemisphere.
type TransformFactory interface {
	NewUTMTransform(zone int, north bool) (Transformer, error)
}

// Params configures a Converter.
type Params struct {
	// Origin of the local frame, expressed in the projected UTM frame.
	Origin pose.Vec3
	Zone   int
	North  bool
}

// DefaultParams is zone 32, northern hemisphere, zero origin.
func DefaultParams() Params {
	return Params{Zone: DefaultZone, North: true}
}

type Converter struct {
	factory TransformFactory

	zone   int
	north  bool
	origin pose.Vec3

	tr  Transformer
	err error
}

// NewConverter builds a Converter and its transform. The returned error
// wraps ErrTransformInit when the transform cannot be built.
func NewConverter(f TransformFactory, p Params) (*Converter, error) {
	if f == nil {
		return nil, fmt.Errorf("utm: transform factory is nil")
	}
	c := &Converter{factory: f, zone: p.Zone, north: p.North, origin: p.Origin}
	if err := c.rebuild(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetZone changes the UTM zone and rebuilds the transform. On error the
// converter stays unusable until a later setter succeeds.
func (c *Converter) SetZone(zone int) error {
	c.zone = zone
	return c.rebuild()
}

// SetHemisphere selects the northern (true) or southern hemisphere and
// rebuilds the transform.
func (c *Converter) SetHemisphere(north bool) error {
	c.north = north
	return c.rebuild()
}

func (c *Converter) SetOrigin(origin pose.Vec3) { c.origin = origin }

func (c *Converter) Zone() int         { return c.zone }
func (c *Converter) North() bool       { return c.north }
func (c *Converter) Origin() pose.Vec3 { return c.origin }

func (c *Converter) Params() Params {
	return Params{Origin: c.origin, Zone: c.zone, North: c.north}
}

// Err reports why the converter is unusable, or nil.
func (c *Converter) Err() error { return c.err }

func (c *Converter) rebuild() error {
	c.closeTransform()
	if c.zone < MinZone || c.zone > MaxZone {
		c.err = fmt.Errorf("%w: zone %d out of range %d..%d", ErrTransformInit, c.zone, MinZone, MaxZone)
		return c.err
	}
	tr, err := c.factory.NewUTMTransform(c.zone, c.north)
	if err == nil && tr == nil {
		err = errors.New("factory returned no transform")
	}
	if err != nil {
		c.err = fmt.Errorf("%w: zone=%d north=%t: %v", ErrTransformInit, c.zone, c.north, err)
		return c.err
	}
	c.tr = tr
	c.err = nil
	return nil
}

func (c *Converter) closeTransform() {
	if cl, ok := c.tr.(io.Closer); ok {
		_ = cl.Close()
	}
	c.tr = nil
}

// Close releases the transform. The converter must not be used afterwards.
func (c *Converter) Close() error {
	c.closeTransform()
	c.err = errors.New("utm: converter closed")
	return nil
}

// Convert projects sol into the local frame. It reports false when there is
// nothing to output: the solution type is NoSolution, or the converter has
// no usable transform (see Err).
//
// The covariance diagonal is (devLon², devLat², devAlt²): the longitude
// deviation feeds the x slot and the latitude deviation the y slot.
// Unknown inputs propagate as NaN.
func (c *Converter) Convert(sol gnss.Solution) (pose.Sample, bool) {
	if sol.PositionType == gnss.NoSolution {
		return pose.Sample{}, false
	}
	if c.tr == nil {
		return pose.Sample{}, false
	}

	e, n, alt := c.tr.Transform(sol.Longitude, sol.Latitude, sol.Altitude)

	var out pose.Sample
	out.Time = sol.Time
	out.Position = pose.Vec3{X: e, Y: n, Z: alt}.Sub(c.origin)
	out.PositionCov[0][0] = sol.DeviationLongitude * sol.DeviationLongitude
	out.PositionCov[1][1] = sol.DeviationLatitude * sol.DeviationLatitude
	out.PositionCov[2][2] = sol.DeviationAltitude * sol.DeviationAltitude
	return out, true
}
