/*
Copyright © 2026 the gribmet authors.
This file is part of gribmet.

gribmet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gribmet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gribmet.  If not, see <http://www.gnu.org/licenses/>.
*/

package gribmet

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ctessum/geom/proj"
	"github.com/spatialmodel/gribmet/grib"
)

// Angles in the grid definition section are stored in units of 1e-6 degrees.
const microDegrees = 1e-6

// Grid lengths are stored in millimetres.
const millimetres = 1e-3

// Ellipsoid is the figure of the earth a grid is defined on.
type Ellipsoid struct {
	// SemiMajorAxis and SemiMinorAxis are in metres. They are
	// equal for a sphere.
	SemiMajorAxis, SemiMinorAxis float64
}

func sphere(r float64) Ellipsoid { return Ellipsoid{SemiMajorAxis: r, SemiMinorAxis: r} }

func flattened(a, rf float64) Ellipsoid {
	return Ellipsoid{SemiMajorAxis: a, SemiMinorAxis: a * (1 - 1/rf)}
}

// EllipsoidOf returns the figure of the earth described by the
// shapeOfTheEarth code in grid definition section sec.
func EllipsoidOf(sec grib.Section) (Ellipsoid, error) {
	shape, err := sec.Get("shapeOfTheEarth")
	if err != nil {
		return Ellipsoid{}, err
	}
	unscaled := func(valueKey, factorKey string) (float64, error) {
		v, err := sec.Get(valueKey)
		if err != nil {
			return math.NaN(), err
		}
		f, err := sec.Get(factorKey)
		if err != nil {
			return math.NaN(), err
		}
		u := grib.Unscale(v, f)
		if math.IsNaN(u) || u <= 0 {
			return math.NaN(), fmt.Errorf("invalid %s for shapeOfTheEarth %d", valueKey, shape)
		}
		return u, nil
	}
	axes := func(scale float64) (Ellipsoid, error) {
		a, err := unscaled("scaledValueOfEarthMajorAxis", "scaleFactorOfEarthMajorAxis")
		if err != nil {
			return Ellipsoid{}, err
		}
		b, err := unscaled("scaledValueOfEarthMinorAxis", "scaleFactorOfEarthMinorAxis")
		if err != nil {
			return Ellipsoid{}, err
		}
		return Ellipsoid{SemiMajorAxis: a * scale, SemiMinorAxis: b * scale}, nil
	}

	switch shape {
	case 0:
		return sphere(6367470), nil
	case 1:
		r, err := unscaled("scaledValueOfRadiusOfSphericalEarth", "scaleFactorOfRadiusOfSphericalEarth")
		if err != nil {
			return Ellipsoid{}, err
		}
		return sphere(r), nil
	case 2:
		return flattened(6378160, 297), nil
	case 3:
		return axes(1000) // axes are given in km
	case 4:
		return flattened(6378137, 298.257222101), nil
	case 5:
		return flattened(6378137, 298.257223563), nil
	case 6:
		return sphere(6371229), nil
	case 7:
		return axes(1)
	case 8:
		return sphere(6371200), nil
	case 9:
		return Ellipsoid{SemiMajorAxis: 6377563.396, SemiMinorAxis: 6356256.909}, nil
	default:
		return Ellipsoid{}, fmt.Errorf("unsupported shapeOfTheEarth %d", shape)
	}
}

// Projection is a Lambert conformal conic map projection.
type Projection struct {
	// CentralLatitude (LaD) and CentralLongitude (LoV) are in degrees.
	CentralLatitude, CentralLongitude float64

	// StandardParallels (Latin1, Latin2) are in degrees.
	StandardParallels [2]float64

	// FalseEasting and FalseNorthing are in metres.
	FalseEasting, FalseNorthing float64

	Ellipsoid Ellipsoid
}

// ProjectionOf builds the projection of the grid described by
// grid definition section sec. The grid is assumed to be Lambert
// conformal.
func ProjectionOf(sec grib.Section) (*Projection, error) {
	e, err := EllipsoidOf(sec)
	if err != nil {
		return nil, fmt.Errorf("gribmet: projection: %v", err)
	}
	var v [4]float64
	for i, key := range []string{"LaD", "LoV", "Latin1", "Latin2"} {
		iv, err := sec.Get(key)
		if err != nil {
			return nil, fmt.Errorf("gribmet: projection: %v", err)
		}
		v[i] = float64(iv) * microDegrees
	}
	return &Projection{
		CentralLatitude:   v[0],
		CentralLongitude:  normalizeLongitude(v[1]),
		StandardParallels: [2]float64{v[2], v[3]},
		Ellipsoid:         e,
	}, nil
}

// normalizeLongitude returns lon in the range [-180, 180).
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Proj4 returns the projection as a PROJ.4 string.
func (p *Projection) Proj4() string {
	return fmt.Sprintf("+proj=lcc +lat_1=%s +lat_2=%s +lat_0=%s +lon_0=%s +x_0=%s +y_0=%s +a=%s +b=%s +units=m +no_defs",
		ftoa(p.StandardParallels[0]), ftoa(p.StandardParallels[1]), ftoa(p.CentralLatitude),
		ftoa(p.CentralLongitude), ftoa(p.FalseEasting), ftoa(p.FalseNorthing),
		ftoa(p.Ellipsoid.SemiMajorAxis), ftoa(p.Ellipsoid.SemiMinorAxis))
}

// ftoa formats v without an exponent, which the PROJ.4 parser
// would split at the '+'.
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// SR returns the spatial reference of the projection.
func (p *Projection) SR() (*proj.SR, error) {
	return proj.Parse(p.Proj4())
}

// longLatSR returns a geographic spatial reference on the
// projection's ellipsoid, so no datum shift is applied between the two.
func (p *Projection) longLatSR() (*proj.SR, error) {
	return proj.Parse(fmt.Sprintf("+proj=longlat +a=%s +b=%s +no_defs",
		ftoa(p.Ellipsoid.SemiMajorAxis), ftoa(p.Ellipsoid.SemiMinorAxis)))
}

// Forward returns a function projecting longitude and latitude in
// degrees to x and y in metres.
func (p *Projection) Forward() (proj.Transformer, error) {
	ll, err := p.longLatSR()
	if err != nil {
		return nil, err
	}
	sr, err := p.SR()
	if err != nil {
		return nil, err
	}
	return ll.NewTransform(sr)
}

// Inverse returns a function converting x and y in metres to
// longitude and latitude in degrees.
func (p *Projection) Inverse() (proj.Transformer, error) {
	ll, err := p.longLatSR()
	if err != nil {
		return nil, err
	}
	sr, err := p.SR()
	if err != nil {
		return nil, err
	}
	return sr.NewTransform(ll)
}

// Grid holds the projected coordinates of the points of a grid.
type Grid struct {
	// X and Y are the projection x and y coordinates of the grid
	// columns and rows, in metres, in the order the data are stored.
	X, Y []float64
}

// Scanning mode flags.
const (
	scanNegativeI     = 0x80
	scanPositiveJ     = 0x40
	scanConsecutiveJ  = 0x20
	scanBoustrophedon = 0x10
)

// GridOf derives the projected coordinates of the grid described by
// grid definition section sec, which is in projection p.
func GridOf(sec grib.Section, p *Projection) (*Grid, error) {
	var v [7]int64
	for i, key := range []string{"Nx", "Ny", "latitudeOfFirstGridPoint",
		"longitudeOfFirstGridPoint", "Dx", "Dy", "scanningMode"} {
		var err error
		if v[i], err = sec.Get(key); err != nil {
			return nil, fmt.Errorf("gribmet: grid: %v", err)
		}
	}
	nx, ny, mode := int(v[0]), int(v[1]), v[6]
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("gribmet: grid: invalid dimensions %dx%d", nx, ny)
	}
	if mode&(scanConsecutiveJ|scanBoustrophedon) != 0 {
		return nil, fmt.Errorf("gribmet: grid: unsupported scanning mode %d", mode)
	}
	fwd, err := p.Forward()
	if err != nil {
		return nil, fmt.Errorf("gribmet: grid: %v", err)
	}
	lat := float64(v[2]) * microDegrees
	lon := normalizeLongitude(float64(v[3]) * microDegrees)
	x0, y0, err := fwd(lon, lat)
	if err != nil {
		return nil, fmt.Errorf("gribmet: grid: projecting first grid point: %v", err)
	}
	dx, dy := float64(v[4])*millimetres, float64(v[5])*millimetres
	if mode&scanNegativeI != 0 {
		dx = -dx
	}
	if mode&scanPositiveJ == 0 {
		dy = -dy
	}
	g := &Grid{X: make([]float64, nx), Y: make([]float64, ny)}
	for i := range g.X {
		g.X[i] = x0 + float64(i)*dx
	}
	for j := range g.Y {
		g.Y[j] = y0 + float64(j)*dy
	}
	return g, nil
}

// LatLon returns the latitude and longitude in degrees of every grid
// point, stored row by row.
func (g *Grid) LatLon(p *Projection) (lat, lon []float64, err error) {
	inv, err := p.Inverse()
	if err != nil {
		return nil, nil, err
	}
	lat = make([]float64, len(g.X)*len(g.Y))
	lon = make([]float64, len(lat))
	for j, y := range g.Y {
		for i, x := range g.X {
			k := j*len(g.X) + i
			if lon[k], lat[k], err = inv(x, y); err != nil {
				return nil, nil, err
			}
		}
	}
	return lat, lon, nil
}
