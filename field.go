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
	"time"

	"github.com/spatialmodel/gribmet/grib"
)

// Dimension names of the projected grid.
const (
	DimX = "x"
	DimY = "y"
)

// TimeUnits are the units of the time coordinates.
const TimeUnits = "seconds since 1970-01-01 00:00:00"

// levelCoords names the coordinate holding the level of fields on
// single surfaces of the given type, with its units.
var levelCoords = map[int]struct{ name, units string }{
	100: {"pressure", "Pa"},
	102: {"altitude", "m"},
	103: {"height", "m"},
}

// Field is one GRIB2 message identified by its signature.
type Field struct {
	// Name is the canonical name of the field, or the decoder's
	// short name if the field is not in FieldDefs.
	Name string

	// RawName is the decoder's short name.
	RawName string

	Signature  Signature
	Projection *Projection

	// Units are the units of the values, if known.
	Units string

	// Message is the message the field was read from.
	Message *grib.Message

	// Values holds the decoded data, once they have been read.
	Values []float64
}

// Annotate builds the field held in message m, naming it after the first
// entry in FieldDefs that matches its signature. m is not modified.
// filename is reserved for recording where the field came from and
// is currently unused.
func Annotate(m *grib.Message, filename string) (*Field, error) {
	sig, err := SignatureOf(m)
	if err != nil {
		return nil, fmt.Errorf("gribmet: message %d: %v", m.Index, err)
	}
	p, err := ProjectionOf(m.Section(3))
	if err != nil {
		return nil, fmt.Errorf("gribmet: message %d: %v", m.Index, err)
	}
	f := &Field{
		Name:       m.Name,
		RawName:    m.Name,
		Signature:  sig,
		Projection: p,
		Message:    m,
	}
	if def, ok := CanonicalName(sig); ok {
		f.Name = def.Name
		f.Units = def.Units
	}
	return f, nil
}

// WithValues returns a copy of f holding the given values.
func (f *Field) WithValues(values []float64) *Field {
	o := *f
	o.Values = values
	return &o
}

// gribTime converts GRIB2 date (YYYYMMDD) and time (HHMM) keys to a time.
func gribTime(sec grib.Section, dateKey, timeKey string) (time.Time, error) {
	d, err := sec.Get(dateKey)
	if err != nil {
		return time.Time{}, err
	}
	t, err := sec.Get(timeKey)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(int(d/10000), time.Month(d/100%100), int(d%100),
		int(t/100), int(t%100), 0, 0, time.UTC), nil
}

// ReferenceTime returns the analysis time of the field's model run.
func (f *Field) ReferenceTime() (time.Time, error) {
	return gribTime(f.Message.Section(1), "dataDate", "dataTime")
}

// ValidTime returns the time the field is valid at.
func (f *Field) ValidTime() (time.Time, error) {
	return gribTime(f.Message.Section(4), "validityDate", "validityTime")
}

func timeAttrs(standardName string) map[string]string {
	return map[string]string{"standard_name": standardName, "units": TimeUnits}
}

// Dataset converts the field to a dataset holding one data variable on
// the projected grid, with scalar time coordinates and, for fields on
// a single pressure or height level, a scalar level coordinate.
func (f *Field) Dataset() (*Dataset, error) {
	grid, err := GridOf(f.Message.Section(3), f.Projection)
	if err != nil {
		return nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
	}
	if f.Values == nil {
		return nil, fmt.Errorf("gribmet: %s: values have not been read", f.Name)
	}
	ref, err := f.ReferenceTime()
	if err != nil {
		return nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
	}
	valid, err := f.ValidTime()
	if err != nil {
		return nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
	}

	crs := f.Projection.Proj4()
	attrs := map[string]string{
		"grib2_meta": f.Signature.String(),
		"grib_name":  f.RawName,
		"crs":        crs,
	}
	if f.Units != "" {
		attrs["units"] = f.Units
	}
	v, err := NewVariable([]string{DimY, DimX}, []int{len(grid.Y), len(grid.X)}, f.Values, attrs)
	if err != nil {
		return nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
	}

	ds := NewDataset()
	ds.Vars[f.Name] = v
	ds.Attrs["Conventions"] = "CF-1.7"
	ds.Attrs["crs"] = crs
	ds.Coords[DimX], _ = NewVariable([]string{DimX}, []int{len(grid.X)}, grid.X,
		map[string]string{"standard_name": "projection_x_coordinate", "units": "m"})
	ds.Coords[DimY], _ = NewVariable([]string{DimY}, []int{len(grid.Y)}, grid.Y,
		map[string]string{"standard_name": "projection_y_coordinate", "units": "m"})
	ds.Coords["time"] = Scalar(float64(valid.Unix()), timeAttrs("time"))
	ds.Coords["forecast_reference_time"] = Scalar(float64(ref.Unix()), timeAttrs("forecast_reference_time"))
	ds.Coords["forecast_period"] = Scalar(valid.Sub(ref).Seconds(),
		map[string]string{"standard_name": "forecast_period", "units": "s"})

	if f.Signature.Level != nil {
		first, err := f.Message.Section(4).Get("typeOfFirstFixedSurface")
		if err != nil {
			return nil, fmt.Errorf("gribmet: %s: %v", f.Name, err)
		}
		if lc, ok := levelCoords[int(first)]; ok {
			ds.Coords[lc.name] = Scalar(*f.Signature.Level, map[string]string{"units": lc.units})
		}
	}
	return ds, nil
}
