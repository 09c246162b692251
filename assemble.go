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
	"strings"

	"github.com/ctessum/unit"
)

// Coordinates removed from each group before combining.
var (
	isobaricDrop = []string{"forecast_period"}
	surfaceDrop  = []string{"forecast_period", "height"}
)

// Assemble partitions fields into those on isobaric levels and those at
// the surface and combines each group into a dataset sharing the time,
// forecast_reference_time, latitude and longitude coordinates. The
// pressure coordinate of the isobaric dataset is in hPa, and data
// variables are renamed according to ShortNames.
func Assemble(fields []*Field) (isobaric, surface *Dataset, err error) {
	var isoGroup, sfcGroup, coordGroup []*Dataset
	for _, f := range fields {
		ds, err := f.Dataset()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case strings.Contains(f.Name, "isobaric"):
			if ds, err = ds.ExpandDims("pressure"); err != nil {
				return nil, nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
			}
			isoGroup = append(isoGroup, ds)
		case strings.Contains(f.Name, "surface"):
			sfcGroup = append(sfcGroup, ds.ResetCoords())
		case f.Name == "latitude" || f.Name == "longitude":
			coordGroup = append(coordGroup, ds)
		}
	}

	var coordDS *Dataset
	if len(isoGroup)+len(sfcGroup) > 0 {
		if coordDS, err = coordinates(coordGroup, fields); err != nil {
			return nil, nil, err
		}
	}

	if isobaric, err = createDataset(isoGroup, isobaricDrop, coordDS); err != nil {
		return nil, nil, fmt.Errorf("gribmet: isobaric dataset: %v", err)
	}
	if p, ok := isobaric.Coords["pressure"]; ok {
		if err := toHectopascals(p); err != nil {
			return nil, nil, fmt.Errorf("gribmet: isobaric dataset: %v", err)
		}
	}
	if surface, err = createDataset(sfcGroup, surfaceDrop, coordDS); err != nil {
		return nil, nil, fmt.Errorf("gribmet: surface dataset: %v", err)
	}
	return RenameVariables(isobaric), RenameVariables(surface), nil
}

// coordinates merges the latitude and longitude fields into one dataset,
// deriving whichever of them is missing from the grid projection.
func coordinates(group []*Dataset, fields []*Field) (*Dataset, error) {
	var coordDS *Dataset
	if len(group) > 0 {
		var err error
		if coordDS, err = Merge(group...); err != nil {
			return nil, fmt.Errorf("gribmet: merging coordinates: %v", err)
		}
	} else {
		coordDS = NewDataset()
	}
	_, hasLat := coordDS.Vars["latitude"]
	_, hasLon := coordDS.Vars["longitude"]
	if hasLat && hasLon {
		return coordDS, nil
	}
	derived, err := latLonDataset(fields[0])
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"latitude", "longitude"} {
		if _, ok := coordDS.Vars[name]; !ok {
			coordDS.Vars[name] = derived.Vars[name]
		}
	}
	for _, dim := range []string{DimX, DimY} {
		if _, ok := coordDS.Coords[dim]; !ok {
			coordDS.Coords[dim] = derived.Coords[dim]
		}
	}
	return coordDS, nil
}

// latLonDataset computes the latitude and longitude of each point of
// the grid of f from its projection.
func latLonDataset(f *Field) (*Dataset, error) {
	grid, err := GridOf(f.Message.Section(3), f.Projection)
	if err != nil {
		return nil, err
	}
	lat, lon, err := grid.LatLon(f.Projection)
	if err != nil {
		return nil, fmt.Errorf("gribmet: computing latitude and longitude: %v", err)
	}
	ds := NewDataset()
	shape := []int{len(grid.Y), len(grid.X)}
	dims := []string{DimY, DimX}
	if ds.Vars["latitude"], err = NewVariable(dims, shape, lat, map[string]string{"units": "degrees_north"}); err != nil {
		return nil, err
	}
	if ds.Vars["longitude"], err = NewVariable(dims, shape, lon, map[string]string{"units": "degrees_east"}); err != nil {
		return nil, err
	}
	ds.Coords[DimX], _ = NewVariable([]string{DimX}, shape[1:], grid.X, map[string]string{"units": "m"})
	ds.Coords[DimY], _ = NewVariable([]string{DimY}, shape[:1], grid.Y, map[string]string{"units": "m"})
	return ds, nil
}

// createDataset combines one group of field datasets.
func createDataset(group []*Dataset, drop []string, coordDS *Dataset) (*Dataset, error) {
	if len(group) == 0 {
		return NewDataset(), nil
	}
	prepared := make([]*Dataset, len(group))
	for i, ds := range group {
		ds = ds.DropVars(drop...)
		coords := make(map[string]*Variable)
		for _, name := range []string{"time", "forecast_reference_time"} {
			v, ok := ds.Get(name)
			if !ok {
				return nil, fmt.Errorf("%s: missing %s", strings.Join(ds.VarNames(), ","), name)
			}
			coords[name] = v
		}
		var err error
		if ds, err = ds.AssignCoords(coords); err != nil {
			return nil, err
		}
		if prepared[i], err = ds.AssignCoordsFrom(coordDS, "latitude", "longitude"); err != nil {
			return nil, err
		}
	}
	return CombineByCoords(prepared)
}

// levelUnits gives the size of the level coordinate units gribmet
// recognizes, in SI units.
var levelUnits = map[string]*unit.Unit{
	"Pa":  unit.New(1, unit.Pascal),
	"hPa": unit.New(100, unit.Pascal),
	"kPa": unit.New(1000, unit.Pascal),
	"m":   unit.New(1, unit.Meter),
	"km":  unit.New(1000, unit.Meter),
}

// toHectopascals converts pressure coordinate p to hPa in place.
func toHectopascals(p *Variable) error {
	u, ok := levelUnits[p.Attrs["units"]]
	if !ok {
		return fmt.Errorf("unknown pressure units %q", p.Attrs["units"])
	}
	if err := u.Check(unit.Pascal); err != nil {
		return fmt.Errorf("pressure coordinate: %v", err)
	}
	for i, e := range p.Data.Elements {
		p.Data.Elements[i] = e * u.Value() / 100
	}
	p.Attrs["units"] = "hPa"
	return nil
}
