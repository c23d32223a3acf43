// Package geodesy provides the WGS84 geographic to WGS84/UTM transform used
// by the utm converter, backed by PROJ.
package geodesy

import (
	"fmt"
	"math"

	"github.com/twpayne/go-proj/v10"

	"gnss-base/internal/utm"
)

const geographicCRS = "EPSG:4326"

// UTMCRS returns the EPSG code of the WGS84/UTM CRS for zone and hemisphere.
func UTMCRS(zone int, north bool) (string, error) {
	if zone < utm.MinZone || zone > utm.MaxZone {
		return "", fmt.Errorf("utm zone %d out of range %d..%d", zone, utm.MinZone, utm.MaxZone)
	}
	base := 32700
	if north {
		base = 32600
	}
	return fmt.Sprintf("EPSG:%d", base+zone), nil
}

// Factory builds PROJ transforms. The zero value is ready to use.
type Factory struct{}

func (Factory) NewUTMTransform(zone int, north bool) (utm.Transformer, error) {
	target, err := UTMCRS(zone, north)
	if err != nil {
		return nil, err
	}
	pj, err := proj.NewCRSToCRS(geographicCRS, target, nil)
	if err != nil {
		return nil, fmt.Errorf("proj %s -> %s: %w", geographicCRS, target, err)
	}
	return &Transform{pj: pj, target: target}, nil
}

// Transform is a single PROJ pipeline. It is not safe for concurrent use.
type Transform struct {
	pj     *proj.PJ
	target string
}

// Target is the EPSG code of the projected CRS.
func (t *Transform) Target() string { return t.target }

// Transform projects (lon, lat, alt). The altitude passes through unchanged.
// Inputs PROJ rejects, including NaN, yield NaN outputs.
func (t *Transform) Transform(lon, lat, alt float64) (float64, float64, float64) {
	nan := math.NaN()
	if t.pj == nil || math.IsNaN(lon) || math.IsNaN(lat) {
		return nan, nan, alt
	}
	// EPSG:4326 uses latitude, longitude axis order.
	out, err := t.pj.Forward(proj.NewCoord(lat, lon, 0, 0))
	if err != nil {
		return nan, nan, alt
	}
	x, y := out.X(), out.Y()
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return nan, nan, alt
	}
	return x, y, alt
}

func (t *Transform) Close() error {
	if t.pj != nil {
		t.pj.Destroy()
		t.pj = nil
	}
	return nil
}
