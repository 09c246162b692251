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
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func mustVariable(t *testing.T, dims []string, shape []int, values []float64, attrs map[string]string) *Variable {
	v, err := NewVariable(dims, shape, values, attrs)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// testDataset returns a dataset holding a 2x3 variable called name with
// x and y index coordinates and a scalar time coordinate.
func testDataset(t *testing.T, name string, offset float64) *Dataset {
	ds := NewDataset()
	ds.Vars[name] = mustVariable(t, []string{DimY, DimX}, []int{2, 3},
		[]float64{offset, offset + 1, offset + 2, offset + 3, offset + 4, offset + 5},
		map[string]string{"units": "K"})
	ds.Coords[DimX] = mustVariable(t, []string{DimX}, []int{3}, []float64{0, 3000, 6000}, nil)
	ds.Coords[DimY] = mustVariable(t, []string{DimY}, []int{2}, []float64{0, 3000}, nil)
	ds.Coords["time"] = Scalar(1704114000, nil)
	ds.Attrs["Conventions"] = "CF-1.7"
	return ds
}

func TestNewVariable(t *testing.T) {
	if _, err := NewVariable([]string{DimX}, []int{3}, []float64{1, 2}, nil); err == nil {
		t.Error("expected an error for the wrong number of values")
	}
	if _, err := NewVariable([]string{DimX, DimY}, []int{3}, []float64{1, 2, 3}, nil); err == nil {
		t.Error("expected an error for mismatched dimensions and shape")
	}
	s := Scalar(4, map[string]string{"units": "s"})
	if !s.IsScalar() || len(s.Data.Elements) != 1 || s.Data.Elements[0] != 4 {
		t.Errorf("bad scalar %# v", pretty.Formatter(s))
	}
}

func TestVariableCopy(t *testing.T) {
	v := mustVariable(t, []string{DimX}, []int{2}, []float64{1, 2}, map[string]string{"units": "m"})
	c := v.Copy()
	c.Data.Elements[0] = 10
	c.Attrs["units"] = "km"
	c.Dims[0] = "z"
	if v.Data.Elements[0] != 1 || v.Attrs["units"] != "m" || v.Dims[0] != DimX {
		t.Error("copy is not independent of the original")
	}
}

func TestDatasetDims(t *testing.T) {
	ds := testDataset(t, "t", 0)
	dims, err := ds.Dims()
	if err != nil {
		t.Fatal(err)
	}
	if want := map[string]int{DimX: 3, DimY: 2}; !reflect.DeepEqual(dims, want) {
		t.Errorf("got %v, want %v", dims, want)
	}
	ds.Vars["bad"] = mustVariable(t, []string{DimX}, []int{4}, make([]float64, 4), nil)
	if _, err := ds.Dims(); err == nil {
		t.Error("expected an error for inconsistent dimension lengths")
	}
}

func TestDropVars(t *testing.T) {
	ds := testDataset(t, "t", 0)
	o := ds.DropVars("time", "t", "nonexistent")
	if _, ok := o.Get("time"); ok {
		t.Error("time was not dropped")
	}
	if _, ok := o.Get("t"); ok {
		t.Error("t was not dropped")
	}
	if _, ok := ds.Get("time"); !ok {
		t.Error("original dataset was modified")
	}
}

func TestAssignCoords(t *testing.T) {
	ds := testDataset(t, "t", 0)
	ds.Vars["forecast_reference_time"] = Scalar(1704110400, nil)
	o, err := ds.AssignCoords(map[string]*Variable{
		"forecast_reference_time": ds.Vars["forecast_reference_time"],
		"latitude":                mustVariable(t, []string{DimY, DimX}, []int{2, 3}, make([]float64, 6), nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := o.Vars["forecast_reference_time"]; ok {
		t.Error("forecast_reference_time should no longer be a data variable")
	}
	if want := []string{"forecast_reference_time", "latitude", "time", DimX, DimY}; !reflect.DeepEqual(o.CoordNames(), want) {
		t.Errorf("coordinates = %v, want %v", o.CoordNames(), want)
	}

	_, err = ds.AssignCoords(map[string]*Variable{
		"latitude": mustVariable(t, []string{DimY, DimX}, []int{3, 3}, make([]float64, 9), nil),
	})
	if err == nil {
		t.Error("expected an error for a coordinate of the wrong shape")
	}
	_, err = ds.AssignCoords(map[string]*Variable{
		"level": mustVariable(t, []string{"z"}, []int{1}, []float64{1}, nil),
	})
	if err == nil {
		t.Error("expected an error for a coordinate on an unknown dimension")
	}
	o, err = ds.AssignCoords(map[string]*Variable{
		"z": mustVariable(t, []string{"z"}, []int{1}, []float64{1}, nil),
	})
	if err != nil {
		t.Errorf("an index coordinate may add a dimension: %v", err)
	} else if _, ok := o.Index("z"); !ok {
		t.Error("z is not an index")
	}
}

func TestAssignCoordsFrom(t *testing.T) {
	ds := testDataset(t, "t", 0)
	src := testDataset(t, "latitude", 38)
	o, err := ds.AssignCoordsFrom(src, "latitude")
	if err != nil {
		t.Fatal(err)
	}
	if !o.Coords["latitude"].Equal(src.Vars["latitude"]) {
		t.Error("latitude was not copied")
	}
	src.Coords[DimX].Data.Elements[2] = 9000
	if _, err = ds.AssignCoordsFrom(src, "latitude"); err == nil {
		t.Error("expected an error for mismatched x coordinates")
	}
	if _, err = ds.AssignCoordsFrom(src, "longitude"); err == nil {
		t.Error("expected an error for a missing coordinate")
	}
}

func TestResetCoords(t *testing.T) {
	ds := testDataset(t, "t", 0)
	ds.Coords["height"] = Scalar(2, map[string]string{"units": "m"})
	o := ds.ResetCoords()
	if want := []string{DimX, DimY}; !reflect.DeepEqual(o.CoordNames(), want) {
		t.Errorf("coordinates = %v, want %v", o.CoordNames(), want)
	}
	if want := []string{"height", "t", "time"}; !reflect.DeepEqual(o.VarNames(), want) {
		t.Errorf("variables = %v, want %v", o.VarNames(), want)
	}
}

func TestExpandDims(t *testing.T) {
	ds := testDataset(t, "t", 0)
	ds.Coords["pressure"] = Scalar(85000, map[string]string{"units": "Pa"})
	o, err := ds.ExpandDims("pressure")
	if err != nil {
		t.Fatal(err)
	}
	v := o.Vars["t"]
	if want := []string{"pressure", DimY, DimX}; !reflect.DeepEqual(v.Dims, want) {
		t.Errorf("dims = %v, want %v", v.Dims, want)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(v.Data.Shape, want) {
		t.Errorf("shape = %v, want %v", v.Data.Shape, want)
	}
	if !reflect.DeepEqual(v.Data.Elements, ds.Vars["t"].Data.Elements) {
		t.Error("values changed")
	}
	p, ok := o.Index("pressure")
	if !ok || p.Data.Elements[0] != 85000 || p.Attrs["units"] != "Pa" {
		t.Errorf("bad pressure index %# v", pretty.Formatter(p))
	}
	if _, err := ds.ExpandDims(DimX); err == nil {
		t.Error("expected an error expanding a non-scalar coordinate")
	}
	if _, err := ds.ExpandDims("level"); err == nil {
		t.Error("expected an error expanding a missing coordinate")
	}
}

func TestRenameVariables(t *testing.T) {
	ds := testDataset(t, "air_temperature_surface", 0)
	ds.Vars["latitude"] = ds.Vars["air_temperature_surface"].Copy()
	ds.Vars["something_else"] = ds.Vars["air_temperature_surface"].Copy()
	o := RenameVariables(ds)
	if want := []string{"latitude", "something_else", "temperature"}; !reflect.DeepEqual(o.VarNames(), want) {
		t.Errorf("variables = %v, want %v", o.VarNames(), want)
	}
	if want := ds.CoordNames(); !reflect.DeepEqual(o.CoordNames(), want) {
		t.Errorf("coordinates = %v, want %v", o.CoordNames(), want)
	}
	// Renaming is idempotent.
	o2 := RenameVariables(o)
	if !reflect.DeepEqual(o2.VarNames(), o.VarNames()) {
		t.Errorf("second rename changed names: %v", o2.VarNames())
	}
}
