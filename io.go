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
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// scalarDim is the length-one dimension scalar variables are stored with.
const scalarDim = "scalar"

// Write writes d to w in NetCDF classic format. Coordinates are stored
// in double precision and data variables in single precision.
func (d *Dataset) Write(w *os.File) error {
	dims, err := d.Dims()
	if err != nil {
		return err
	}
	dimNames := make([]string, 0, len(dims)+1)
	for name := range dims {
		dimNames = append(dimNames, name)
	}
	sort.Strings(dimNames)
	lengths := make([]int, len(dimNames))
	for i, name := range dimNames {
		lengths[i] = dims[name]
	}
	hasScalar := false
	for _, m := range []map[string]*Variable{d.Coords, d.Vars} {
		for _, v := range m {
			hasScalar = hasScalar || v.IsScalar()
		}
	}
	if hasScalar {
		dimNames = append(dimNames, scalarDim)
		lengths = append(lengths, 1)
	}

	h := cdf.NewHeader(dimNames, lengths)
	h.AddAttribute("", "data_version", DataVersion)
	for _, k := range sortedAttrs(d.Attrs) {
		h.AddAttribute("", k, d.Attrs[k])
	}
	coordNames, varNames := d.CoordNames(), d.VarNames()
	if len(coordNames) > 0 {
		h.AddAttribute("", "coordinates", strings.Join(coordNames, " "))
	}

	// Coordinates that are not indexes are listed with each data variable.
	var aux []string
	for _, name := range coordNames {
		if _, ok := d.Index(name); !ok {
			aux = append(aux, name)
		}
	}

	define := func(name string, v *Variable, prototype interface{}) {
		vdims := v.Dims
		if v.IsScalar() {
			vdims = []string{scalarDim}
		}
		h.AddVariable(name, vdims, prototype)
		for _, k := range sortedAttrs(v.Attrs) {
			if k == "coordinates" {
				continue
			}
			h.AddAttribute(name, k, v.Attrs[k])
		}
		if v.IsScalar() {
			h.AddAttribute(name, scalarDim, "true")
		}
	}
	for _, name := range coordNames {
		define(name, d.Coords[name], []float64{0})
	}
	for _, name := range varNames {
		define(name, d.Vars[name], []float32{0})
		if len(aux) > 0 {
			h.AddAttribute(name, "coordinates", strings.Join(aux, " "))
		}
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for _, name := range coordNames {
		if err = writeNCF(f, name, d.Coords[name].Data, false); err != nil {
			return fmt.Errorf("gribmet: writing coordinate %s to netcdf file: %v", name, err)
		}
	}
	for _, name := range varNames {
		if err = writeNCF(f, name, d.Vars[name].Data, true); err != nil {
			return fmt.Errorf("gribmet: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func sortedAttrs(attrs map[string]string) []string {
	o := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if v != "" {
			o = append(o, k)
		}
	}
	sort.Strings(o)
	return o
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray, single bool) error {
	end := f.Header.Lengths(name)
	n := 1
	for _, l := range end {
		n *= l
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	var err error
	if single {
		data32 := make([]float32, len(data.Elements))
		for i, e := range data.Elements {
			data32[i] = float32(e)
		}
		_, err = w.Write(data32)
	} else {
		_, err = w.Write(data.Elements)
	}
	return err
}

// ReadDataset reads a dataset written by Dataset.Write.
func ReadDataset(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("gribmet: reading dataset: %v", err)
	}
	if v, _ := f.Header.GetAttribute("", "data_version").(string); v != DataVersion {
		return nil, fmt.Errorf("gribmet: reading dataset: data version %q is incompatible "+
			"with the required version %s", v, DataVersion)
	}
	d := NewDataset()
	isCoord := make(map[string]bool)
	for _, a := range f.Header.Attributes("") {
		s, ok := f.Header.GetAttribute("", a).(string)
		if !ok {
			continue
		}
		switch a {
		case "data_version":
		case "coordinates":
			for _, c := range strings.Fields(s) {
				isCoord[c] = true
			}
		default:
			d.Attrs[a] = s
		}
	}
	for _, name := range f.Header.Variables() {
		lengths := f.Header.Lengths(name)
		n := 1
		for _, l := range lengths {
			n *= l
		}
		buf := f.Header.ZeroValue(name, n)
		if _, err := f.Reader(name, nil, nil).Read(buf); err != nil {
			return nil, fmt.Errorf("gribmet: reading %s: %v", name, err)
		}
		var vals []float64
		switch b := buf.(type) {
		case []float64:
			vals = b
		case []float32:
			vals = make([]float64, len(b))
			for i, e := range b {
				vals[i] = float64(e)
			}
		default:
			return nil, fmt.Errorf("gribmet: reading %s: unsupported type %T", name, buf)
		}

		attrs := make(map[string]string)
		scalar := false
		for _, a := range f.Header.Attributes(name) {
			s, ok := f.Header.GetAttribute(name, a).(string)
			if !ok {
				continue
			}
			switch a {
			case scalarDim:
				scalar = true
			case "coordinates":
			default:
				attrs[a] = s
			}
		}
		dims := f.Header.Dimensions(name)
		if scalar {
			dims, lengths = nil, nil
		}
		v, err := NewVariable(dims, lengths, vals, attrs)
		if err != nil {
			return nil, fmt.Errorf("gribmet: reading %s: %v", name, err)
		}
		if isCoord[name] {
			d.Coords[name] = v
		} else {
			d.Vars[name] = v
		}
	}
	return d, nil
}
