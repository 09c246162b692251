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
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Variable is an array with named dimensions.
type Variable struct {
	// Dims are the names of the dimensions of Data, in order.
	// A scalar has no dimensions and a single element.
	Dims []string

	Data *sparse.DenseArray

	Attrs map[string]string
}

// NewVariable returns a variable holding the given values, which
// must be stored in row-major order for the given dimensions and shape.
func NewVariable(dims []string, shape []int, values []float64, attrs map[string]string) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("gribmet: %d dimensions but shape has %d", len(dims), len(shape))
	}
	v := &Variable{
		Dims:  append([]string(nil), dims...),
		Data:  sparse.ZerosDense(append([]int(nil), shape...)...),
		Attrs: make(map[string]string),
	}
	if len(values) != len(v.Data.Elements) {
		return nil, fmt.Errorf("gribmet: %d values for shape %v", len(values), shape)
	}
	copy(v.Data.Elements, values)
	for k, a := range attrs {
		v.Attrs[k] = a
	}
	return v, nil
}

// Scalar returns a variable with no dimensions holding val.
func Scalar(val float64, attrs map[string]string) *Variable {
	v, _ := NewVariable(nil, nil, []float64{val}, attrs)
	return v
}

// IsScalar returns whether v has no dimensions.
func (v *Variable) IsScalar() bool { return len(v.Dims) == 0 }

// Copy returns a deep copy of v.
func (v *Variable) Copy() *Variable {
	o := &Variable{
		Dims:  append([]string(nil), v.Dims...),
		Data:  v.Data.Copy(),
		Attrs: make(map[string]string, len(v.Attrs)),
	}
	for k, a := range v.Attrs {
		o.Attrs[k] = a
	}
	return o
}

// Size returns the length of dimension dim of v, and false if v
// does not have that dimension.
func (v *Variable) Size(dim string) (int, bool) {
	for i, d := range v.Dims {
		if d == dim {
			return v.Data.Shape[i], true
		}
	}
	return 0, false
}

// sameDims returns whether v and v2 have the same dimensions and shape.
func (v *Variable) sameDims(v2 *Variable) bool {
	if len(v.Dims) != len(v2.Dims) {
		return false
	}
	for i, d := range v.Dims {
		if d != v2.Dims[i] || v.Data.Shape[i] != v2.Data.Shape[i] {
			return false
		}
	}
	return true
}

// Equal returns whether v and v2 have the same dimensions and values.
// NaN values are equal to each other.
func (v *Variable) Equal(v2 *Variable) bool {
	return v.sameDims(v2) && floats.Same(v.Data.Elements, v2.Data.Elements)
}

// approxEqual is like Equal but tolerates floating point rounding.
func (v *Variable) approxEqual(v2 *Variable) bool {
	if !v.sameDims(v2) {
		return false
	}
	for i, a := range v.Data.Elements {
		b := v2.Data.Elements[i]
		if math.IsNaN(a) && math.IsNaN(b) {
			continue
		}
		if !floats.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) {
			return false
		}
	}
	return true
}

// Dataset is a collection of variables sharing dimensions.
type Dataset struct {
	// Coords holds coordinate variables. A coordinate with the same
	// name as its single dimension is the index of that dimension.
	Coords map[string]*Variable

	// Vars holds data variables.
	Vars map[string]*Variable

	Attrs map[string]string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Coords: make(map[string]*Variable),
		Vars:   make(map[string]*Variable),
		Attrs:  make(map[string]string),
	}
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	o := NewDataset()
	for k, v := range d.Coords {
		o.Coords[k] = v.Copy()
	}
	for k, v := range d.Vars {
		o.Vars[k] = v.Copy()
	}
	for k, a := range d.Attrs {
		o.Attrs[k] = a
	}
	return o
}

func sortedKeys(m map[string]*Variable) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// VarNames returns the names of the data variables, sorted.
func (d *Dataset) VarNames() []string { return sortedKeys(d.Vars) }

// CoordNames returns the names of the coordinates, sorted.
func (d *Dataset) CoordNames() []string { return sortedKeys(d.Coords) }

// Get returns the coordinate or data variable called name.
func (d *Dataset) Get(name string) (*Variable, bool) {
	if v, ok := d.Coords[name]; ok {
		return v, true
	}
	v, ok := d.Vars[name]
	return v, ok
}

// Index returns the index coordinate of dimension dim, if there is one.
func (d *Dataset) Index(dim string) (*Variable, bool) {
	v, ok := d.Coords[dim]
	if !ok || len(v.Dims) != 1 || v.Dims[0] != dim {
		return nil, false
	}
	return v, true
}

// Dims returns the length of every dimension in d, and an error if
// two variables disagree on the length of a dimension.
func (d *Dataset) Dims() (map[string]int, error) {
	dims := make(map[string]int)
	for _, m := range []map[string]*Variable{d.Coords, d.Vars} {
		for _, name := range sortedKeys(m) {
			v := m[name]
			for i, dim := range v.Dims {
				n := v.Data.Shape[i]
				if n0, ok := dims[dim]; ok && n0 != n {
					return nil, fmt.Errorf("gribmet: dimension %s of %s has length %d, expected %d", dim, name, n, n0)
				}
				dims[dim] = n
			}
		}
	}
	return dims, nil
}

// DropVars returns a copy of d without the named coordinates or
// variables. Names not in d are ignored.
func (d *Dataset) DropVars(names ...string) *Dataset {
	o := d.Copy()
	for _, name := range names {
		delete(o.Coords, name)
		delete(o.Vars, name)
	}
	return o
}

// AssignCoords returns a copy of d with the given coordinates added,
// replacing any coordinate or variable of the same name. Each
// coordinate's dimensions must have the lengths they have in d.
func (d *Dataset) AssignCoords(coords map[string]*Variable) (*Dataset, error) {
	dims, err := d.Dims()
	if err != nil {
		return nil, err
	}
	o := d.Copy()
	for _, name := range sortedKeys(coords) {
		c := coords[name]
		for i, dim := range c.Dims {
			n, ok := dims[dim]
			if !ok && !(len(c.Dims) == 1 && dim == name) {
				return nil, fmt.Errorf("gribmet: coordinate %s: dimension %s not in dataset", name, dim)
			}
			if ok && n != c.Data.Shape[i] {
				return nil, fmt.Errorf("gribmet: coordinate %s: dimension %s has length %d, expected %d", name, dim, c.Data.Shape[i], n)
			}
		}
		delete(o.Vars, name)
		o.Coords[name] = c.Copy()
	}
	return o, nil
}

// AssignCoordsFrom returns a copy of d with the named variables of src
// added as coordinates. The index coordinates of the dimensions the
// variables span must agree between d and src.
func (d *Dataset) AssignCoordsFrom(src *Dataset, names ...string) (*Dataset, error) {
	coords := make(map[string]*Variable)
	for _, name := range names {
		v, ok := src.Get(name)
		if !ok {
			return nil, fmt.Errorf("gribmet: coordinate %s not found", name)
		}
		for _, dim := range v.Dims {
			i1, ok1 := d.Index(dim)
			i2, ok2 := src.Index(dim)
			if ok1 && ok2 && !i1.approxEqual(i2) {
				return nil, fmt.Errorf("gribmet: coordinate %s: %s values do not match", name, dim)
			}
		}
		coords[name] = v
	}
	return d.AssignCoords(coords)
}

// ResetCoords returns a copy of d with every coordinate that is not the
// index of a dimension turned into a data variable.
func (d *Dataset) ResetCoords() *Dataset {
	o := d.Copy()
	for name, c := range o.Coords {
		if _, ok := o.Index(name); ok {
			continue
		}
		delete(o.Coords, name)
		o.Vars[name] = c
	}
	return o
}

// ExpandDims returns a copy of d in which scalar coordinate name has
// become a dimension of length one. Every data variable gains
// the new dimension first.
func (d *Dataset) ExpandDims(name string) (*Dataset, error) {
	c, ok := d.Coords[name]
	if !ok || !c.IsScalar() {
		return nil, fmt.Errorf("gribmet: %s is not a scalar coordinate", name)
	}
	o := d.Copy()
	o.Coords[name] = &Variable{
		Dims:  []string{name},
		Data:  sparse.ZerosDense(1),
		Attrs: c.Copy().Attrs,
	}
	o.Coords[name].Data.Elements[0] = c.Data.Elements[0]
	for _, v := range o.Vars {
		shape := append([]int{1}, v.Data.Shape...)
		data := sparse.ZerosDense(shape...)
		copy(data.Elements, v.Data.Elements)
		v.Dims = append([]string{name}, v.Dims...)
		v.Data = data
	}
	return o, nil
}

// Rename returns a copy of d with each data variable that is a key in
// table renamed to the corresponding value. Keys not in d are ignored.
func (d *Dataset) Rename(table map[string]string) *Dataset {
	o := d.Copy()
	vars := make(map[string]*Variable, len(o.Vars))
	for name, v := range o.Vars {
		if newName, ok := table[name]; ok {
			name = newName
		}
		vars[name] = v
	}
	o.Vars = vars
	return o
}

// RenameVariables renames the data variables of d from their canonical
// names to the names in ShortNames.
func RenameVariables(d *Dataset) *Dataset {
	return d.Rename(ShortNames)
}
