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
	"strings"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// attrMode determines how the attributes of merged objects are combined.
type attrMode int

const (
	// overrideAttrs keeps the attributes of the first object.
	overrideAttrs attrMode = iota

	// dropConflicts keeps every attribute, except those whose
	// values differ between objects.
	dropConflicts
)

func combineAttrs(mode attrMode, attrs ...map[string]string) map[string]string {
	o := make(map[string]string)
	if len(attrs) == 0 {
		return o
	}
	if mode == overrideAttrs {
		for k, v := range attrs[0] {
			o[k] = v
		}
		return o
	}
	dropped := make(map[string]bool)
	for _, a := range attrs {
		for k, v := range a {
			if dropped[k] {
				continue
			}
			if v0, ok := o[k]; ok && v0 != v {
				delete(o, k)
				dropped[k] = true
				continue
			}
			o[k] = v
		}
	}
	return o
}

// Merge merges datasets into one. Index coordinates are combined with an
// outer join, leaving NaN where a dataset has no value. Variables in more
// than one dataset must agree wherever both are defined. Attributes are
// taken from the first dataset.
func Merge(dss ...*Dataset) (*Dataset, error) {
	return merge(dss, overrideAttrs)
}

func merge(dss []*Dataset, mode attrMode) (*Dataset, error) {
	aligned, err := align(dss)
	if err != nil {
		return nil, err
	}
	o := NewDataset()
	attrs := make([]map[string]string, len(aligned))
	for i, ds := range aligned {
		attrs[i] = ds.Attrs
		for _, name := range ds.CoordNames() {
			if _, ok := o.Vars[name]; ok {
				return nil, fmt.Errorf("gribmet: merge: %s is a coordinate in one dataset and a variable in another", name)
			}
			if err := mergeVariable(o.Coords, name, ds.Coords[name], mode); err != nil {
				return nil, err
			}
		}
		for _, name := range ds.VarNames() {
			if _, ok := o.Coords[name]; ok {
				return nil, fmt.Errorf("gribmet: merge: %s is a coordinate in one dataset and a variable in another", name)
			}
			if err := mergeVariable(o.Vars, name, ds.Vars[name], mode); err != nil {
				return nil, err
			}
		}
	}
	o.Attrs = combineAttrs(mode, attrs...)
	if _, err := o.Dims(); err != nil {
		return nil, fmt.Errorf("gribmet: merge: %v", err)
	}
	return o, nil
}

// mergeVariable adds v to m under name. If m already holds a variable of
// that name, the two must not conflict: their values must be equal
// wherever neither is NaN.
func mergeVariable(m map[string]*Variable, name string, v *Variable, mode attrMode) error {
	existing, ok := m[name]
	if !ok {
		m[name] = v.Copy()
		return nil
	}
	if !existing.sameDims(v) {
		return fmt.Errorf("gribmet: merge: variable %s has dimensions %v and %v", name, existing.Dims, v.Dims)
	}
	for i, b := range v.Data.Elements {
		a := existing.Data.Elements[i]
		switch {
		case math.IsNaN(b):
		case math.IsNaN(a):
			existing.Data.Elements[i] = b
		case !floats.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9):
			return fmt.Errorf("gribmet: merge: conflicting values for variable %s", name)
		}
	}
	existing.Attrs = combineAttrs(mode, existing.Attrs, v.Attrs)
	return nil
}

// align reindexes dss so that every dimension with an index coordinate
// has the same index in all of them. Indexes that differ are replaced by
// their sorted union.
func align(dss []*Dataset) ([]*Dataset, error) {
	indexes := make(map[string][]*Variable)
	var dims []string
	for _, ds := range dss {
		for _, name := range ds.CoordNames() {
			idx, ok := ds.Index(name)
			if !ok {
				continue
			}
			if _, ok := indexes[name]; !ok {
				dims = append(dims, name)
			}
			indexes[name] = append(indexes[name], idx)
		}
	}
	o := make([]*Dataset, len(dss))
	for i, ds := range dss {
		o[i] = ds.Copy()
	}
	for _, dim := range dims {
		idx := indexes[dim]
		same := true
		for _, v := range idx[1:] {
			if !v.approxEqual(idx[0]) {
				same = false
				break
			}
		}
		if same {
			continue
		}
		union := unionIndex(idx)
		for i, ds := range o {
			if _, ok := ds.Index(dim); !ok {
				continue
			}
			var err error
			if o[i], err = reindex(ds, dim, union); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

// unionIndex returns the sorted unique values of the given indexes.
func unionIndex(idx []*Variable) []float64 {
	seen := make(map[float64]bool)
	var o []float64
	for _, v := range idx {
		for _, e := range v.Data.Elements {
			if !seen[e] {
				seen[e] = true
				o = append(o, e)
			}
		}
	}
	sort.Float64s(o)
	return o
}

// reindex returns a copy of ds with the index of dim replaced by index.
// Positions with no value in ds are filled with NaN.
func reindex(ds *Dataset, dim string, index []float64) (*Dataset, error) {
	old, _ := ds.Index(dim)
	pos := make(map[float64]int)
	for i, e := range old.Data.Elements {
		if _, ok := pos[e]; ok {
			return nil, fmt.Errorf("gribmet: index %s has duplicate value %g", dim, e)
		}
		pos[e] = i
	}
	from := make([]int, len(index))
	for j, e := range index {
		if i, ok := pos[e]; ok {
			from[j] = i
		} else {
			from[j] = -1
		}
	}
	o := NewDataset()
	o.Attrs = ds.Copy().Attrs
	for _, m := range []struct{ src, dst map[string]*Variable }{{ds.Coords, o.Coords}, {ds.Vars, o.Vars}} {
		for name, v := range m.src {
			if name == dim {
				nv, err := NewVariable([]string{dim}, []int{len(index)}, index, v.Attrs)
				if err != nil {
					return nil, err
				}
				m.dst[name] = nv
				continue
			}
			m.dst[name] = reindexVariable(v, dim, from)
		}
	}
	return o, nil
}

// axisLayout returns the number of blocks before axis and the number
// of elements in each slab after it.
func axisLayout(shape []int, axis int) (outer, inner int) {
	outer, inner = 1, 1
	for _, n := range shape[:axis] {
		outer *= n
	}
	for _, n := range shape[axis+1:] {
		inner *= n
	}
	return outer, inner
}

func axisOf(v *Variable, dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// reindexVariable returns a copy of v where position j along dim holds
// the values at position from[j] of v, or NaN if from[j] is negative.
func reindexVariable(v *Variable, dim string, from []int) *Variable {
	axis := axisOf(v, dim)
	if axis < 0 {
		return v.Copy()
	}
	shape := append([]int(nil), v.Data.Shape...)
	oldN := shape[axis]
	shape[axis] = len(from)
	o := v.Copy()
	o.Data = sparse.ZerosDense(shape...)
	outer, inner := axisLayout(shape, axis)
	for b := 0; b < outer; b++ {
		for j, i := range from {
			dst := o.Data.Elements[(b*len(from)+j)*inner : (b*len(from)+j+1)*inner]
			if i < 0 {
				for k := range dst {
					dst[k] = math.NaN()
				}
				continue
			}
			copy(dst, v.Data.Elements[(b*oldN+i)*inner:(b*oldN+i+1)*inner])
		}
	}
	return o
}

// CombineByCoords combines datasets using their index coordinates.
// Datasets holding the same data variables are concatenated along the
// one dimension whose index differs between them, in ascending order of
// that index. The results are then merged, with an outer join on the
// index coordinates. Attributes whose values conflict are dropped.
func CombineByCoords(dss []*Dataset) (*Dataset, error) {
	var keys []string
	groups := make(map[string][]*Dataset)
	for _, ds := range dss {
		key := strings.Join(ds.VarNames(), "\x00")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], ds)
	}
	combined := make([]*Dataset, len(keys))
	for i, key := range keys {
		var err error
		if combined[i], err = combineGroup(groups[key]); err != nil {
			return nil, err
		}
	}
	return merge(combined, dropConflicts)
}

// combineGroup concatenates datasets holding the same data variables.
func combineGroup(dss []*Dataset) (*Dataset, error) {
	if len(dss) == 1 {
		return dss[0].Copy(), nil
	}
	var concatDims []string
	for _, dim := range dss[0].CoordNames() {
		idx0, ok := dss[0].Index(dim)
		if !ok {
			continue
		}
		for _, ds := range dss[1:] {
			idx, ok := ds.Index(dim)
			if !ok {
				return nil, fmt.Errorf("gribmet: combine: dimension %s is missing from some datasets", dim)
			}
			if !idx.approxEqual(idx0) {
				concatDims = append(concatDims, dim)
				break
			}
		}
	}
	switch len(concatDims) {
	case 0:
		return nil, fmt.Errorf("gribmet: combine: could not find a dimension to order datasets %v along", dss[0].VarNames())
	case 1:
	default:
		return nil, fmt.Errorf("gribmet: combine: datasets differ along more than one dimension: %v", concatDims)
	}
	dim := concatDims[0]

	ordered := append([]*Dataset(nil), dss...)
	first := func(ds *Dataset) float64 {
		idx, _ := ds.Index(dim)
		return idx.Data.Elements[0]
	}
	sort.SliceStable(ordered, func(i, j int) bool { return first(ordered[i]) < first(ordered[j]) })
	for i := 1; i < len(ordered); i++ {
		if first(ordered[i]) == first(ordered[i-1]) {
			return nil, fmt.Errorf("gribmet: combine: more than one dataset starts at %s=%g", dim, first(ordered[i]))
		}
	}
	o, err := concat(ordered, dim)
	if err != nil {
		return nil, err
	}
	idx, _ := o.Index(dim)
	for i := 1; i < len(idx.Data.Elements); i++ {
		if idx.Data.Elements[i] <= idx.Data.Elements[i-1] {
			return nil, fmt.Errorf("gribmet: combine: index %s is not monotonic after combining", dim)
		}
	}
	return o, nil
}

// concat concatenates dss along dim. Variables without dim that are
// equal in all datasets are kept as they are; those that differ gain dim.
func concat(dss []*Dataset, dim string) (*Dataset, error) {
	o := NewDataset()
	attrs := make([]map[string]string, len(dss))
	for i, ds := range dss {
		attrs[i] = ds.Attrs
	}
	o.Attrs = combineAttrs(dropConflicts, attrs...)
	lengths := make([]int, len(dss))
	for i, ds := range dss {
		idx, _ := ds.Index(dim)
		lengths[i] = len(idx.Data.Elements)
	}
	for _, m := range []struct {
		get func(*Dataset) map[string]*Variable
		dst map[string]*Variable
	}{
		{func(ds *Dataset) map[string]*Variable { return ds.Coords }, o.Coords},
		{func(ds *Dataset) map[string]*Variable { return ds.Vars }, o.Vars},
	} {
		for _, name := range sortedKeys(m.get(dss[0])) {
			vs := make([]*Variable, len(dss))
			for i, ds := range dss {
				v, ok := m.get(ds)[name]
				if !ok {
					return nil, fmt.Errorf("gribmet: combine: %s is missing from some datasets", name)
				}
				vs[i] = v
			}
			v, err := concatVariables(vs, dim, lengths)
			if err != nil {
				return nil, fmt.Errorf("gribmet: combine: %s: %v", name, err)
			}
			m.dst[name] = v
		}
	}
	if _, err := o.Dims(); err != nil {
		return nil, fmt.Errorf("gribmet: combine: %v", err)
	}
	return o, nil
}

func concatVariables(vs []*Variable, dim string, lengths []int) (*Variable, error) {
	attrs := make([]map[string]string, len(vs))
	for i, v := range vs {
		attrs[i] = v.Attrs
	}
	if axisOf(vs[0], dim) < 0 {
		same := true
		for _, v := range vs[1:] {
			if !v.Equal(vs[0]) {
				same = false
				break
			}
		}
		if same {
			o := vs[0].Copy()
			o.Attrs = combineAttrs(dropConflicts, attrs...)
			return o, nil
		}
		// Give every variable a leading dim so they can be concatenated.
		expanded := make([]*Variable, len(vs))
		for i, v := range vs {
			if axisOf(v, dim) >= 0 {
				return nil, fmt.Errorf("dimension %s is missing from some datasets", dim)
			}
			expanded[i] = broadcastLeading(v, dim, lengths[i])
		}
		vs = expanded
	}
	axis := axisOf(vs[0], dim)
	shape := append([]int(nil), vs[0].Data.Shape...)
	total := 0
	for i, v := range vs {
		if axisOf(v, dim) != axis || len(v.Dims) != len(vs[0].Dims) {
			return nil, fmt.Errorf("dimensions %v and %v do not match", vs[0].Dims, v.Dims)
		}
		for k, d := range v.Dims {
			if d != vs[0].Dims[k] || (k != axis && v.Data.Shape[k] != shape[k]) {
				return nil, fmt.Errorf("dimensions %v and %v do not match", vs[0].Dims, v.Dims)
			}
		}
		if v.Data.Shape[axis] != lengths[i] {
			return nil, fmt.Errorf("dimension %s has length %d, expected %d", dim, v.Data.Shape[axis], lengths[i])
		}
		total += lengths[i]
	}
	shape[axis] = total
	o := &Variable{
		Dims:  append([]string(nil), vs[0].Dims...),
		Data:  sparse.ZerosDense(shape...),
		Attrs: combineAttrs(dropConflicts, attrs...),
	}
	outer, inner := axisLayout(shape, axis)
	for b := 0; b < outer; b++ {
		offset := b * total * inner
		for i, v := range vs {
			n := lengths[i] * inner
			copy(o.Data.Elements[offset:offset+n], v.Data.Elements[b*n:(b+1)*n])
			offset += n
		}
	}
	return o, nil
}

// broadcastLeading returns v repeated n times along a new leading
// dimension dim.
func broadcastLeading(v *Variable, dim string, n int) *Variable {
	o := &Variable{
		Dims:  append([]string{dim}, v.Dims...),
		Data:  sparse.ZerosDense(append([]int{n}, v.Data.Shape...)...),
		Attrs: v.Copy().Attrs,
	}
	size := len(v.Data.Elements)
	for i := 0; i < n; i++ {
		copy(o.Data.Elements[i*size:(i+1)*size], v.Data.Elements)
	}
	return o
}
