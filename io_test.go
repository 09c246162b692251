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
	"context"
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"gonum.org/v1/gonum/floats"
)

func TestWriteRead(t *testing.T) {
	iso, sfc, err := Load(context.Background(), testDecoder(), testFile)
	if err != nil {
		t.Fatal(err)
	}
	for name, ds := range map[string]*Dataset{"isobaric": iso, "surface": sfc} {
		t.Run(name, func(t *testing.T) {
			f, err := ioutil.TempFile("", "gribmet_"+name)
			if err != nil {
				t.Fatal(err)
			}
			defer os.Remove(f.Name())
			defer f.Close()

			if err = ds.Write(f); err != nil {
				t.Fatal(err)
			}
			got, err := ReadDataset(f)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.VarNames(), ds.VarNames()) {
				t.Errorf("variables = %v, want %v", got.VarNames(), ds.VarNames())
			}
			if !reflect.DeepEqual(got.CoordNames(), ds.CoordNames()) {
				t.Errorf("coordinates = %v, want %v", got.CoordNames(), ds.CoordNames())
			}
			if !reflect.DeepEqual(got.Attrs, ds.Attrs) {
				t.Errorf("attributes = %v, want %v", got.Attrs, ds.Attrs)
			}
			for _, n := range ds.CoordNames() {
				want, have := ds.Coords[n], got.Coords[n]
				if !want.Equal(have) {
					t.Errorf("coordinate %s = %v, want %v", n, have.Data.Elements, want.Data.Elements)
				}
				if !reflect.DeepEqual(want.Attrs, have.Attrs) {
					t.Errorf("coordinate %s attributes = %v, want %v", n, have.Attrs, want.Attrs)
				}
			}
			for _, n := range ds.VarNames() {
				want, have := ds.Vars[n], got.Vars[n]
				if !want.sameDims(have) {
					t.Errorf("%s dims = %v, want %v", n, have.Dims, want.Dims)
					continue
				}
				// Data variables are stored in single precision.
				for i, w := range want.Data.Elements {
					if !floats.EqualWithinRel(w, have.Data.Elements[i], 1e-6) {
						t.Errorf("%s[%d] = %g, want %g", n, i, have.Data.Elements[i], w)
						break
					}
				}
				if !reflect.DeepEqual(want.Attrs, have.Attrs) {
					t.Errorf("%s attributes = %v, want %v", n, have.Attrs, want.Attrs)
				}
			}
		})
	}
}

func TestWriteHeader(t *testing.T) {
	iso, _, err := Load(context.Background(), testDecoder(), testFile)
	if err != nil {
		t.Fatal(err)
	}
	f, err := ioutil.TempFile("", "gribmet_header")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()
	if err = iso.Write(f); err != nil {
		t.Fatal(err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		t.Fatal(err)
	}
	if v := nc.Header.GetAttribute("", "data_version"); v != DataVersion {
		t.Errorf("data_version = %v", v)
	}
	if v := nc.Header.GetAttribute("temperature", "coordinates"); v != "forecast_reference_time latitude longitude time" {
		t.Errorf("temperature coordinates = %q", v)
	}
	if want := []string{"pressure", "y", "x"}; !reflect.DeepEqual(nc.Header.Dimensions("temperature"), want) {
		t.Errorf("temperature dimensions = %v, want %v", nc.Header.Dimensions("temperature"), want)
	}
	if _, ok := nc.Header.ZeroValue("temperature", 1).([]float32); !ok {
		t.Error("data variables should be single precision")
	}
	if _, ok := nc.Header.ZeroValue("latitude", 1).([]float64); !ok {
		t.Error("coordinates should be double precision")
	}
}

func TestReadDatasetVersion(t *testing.T) {
	f, err := ioutil.TempFile("", "gribmet_version")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()
	h := cdf.NewHeader([]string{"x"}, []int{2})
	h.AddAttribute("", "data_version", "0")
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.Define()
	if _, err = cdf.Create(f, h); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadDataset(f); err == nil {
		t.Error("expected an error for an incompatible data version")
	}
}
