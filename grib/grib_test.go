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

package grib

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func TestUnscale(t *testing.T) {
	tests := []struct {
		value, factor int64
		want          float64
	}{
		{value: 85000, factor: 0, want: 85000},
		{value: 2, factor: 0, want: 2},
		{value: 6371229, factor: 0, want: 6371229},
		{value: 63712290, factor: 1, want: 6371229},
		{value: 15, factor: -2, want: 1500},
	}
	for _, test := range tests {
		if got := Unscale(test.value, test.factor); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("Unscale(%d, %d) = %g; want %g", test.value, test.factor, got, test.want)
		}
	}
	if v := Unscale(Missing, 0); !math.IsNaN(v) {
		t.Errorf("missing value should be NaN, got %g", v)
	}
	if v := Unscale(10, Missing); !math.IsNaN(v) {
		t.Errorf("missing factor should be NaN, got %g", v)
	}
}

func TestSectionGet(t *testing.T) {
	s := Section{"Nx": 1799}
	if v, err := s.Get("Nx"); err != nil || v != 1799 {
		t.Errorf("Get(Nx) = %d, %v", v, err)
	}
	if _, err := s.Get("Ny"); err == nil {
		t.Error("expected an error for a missing key")
	}
	var m Message
	if _, err := m.Section(3).Get("Nx"); err == nil {
		t.Error("expected an error from an empty section")
	}
}

func TestPoints(t *testing.T) {
	var m Message
	m.Sections[3] = Section{"Nx": 1799, "Ny": 1059}
	if n, err := m.Points(); err != nil || n != 1799*1059 {
		t.Errorf("Points() = %d, %v", n, err)
	}
	delete(m.Sections[3], "Ny")
	if _, err := m.Points(); err == nil {
		t.Error("expected an error for a missing Ny")
	}
}

func TestParseScan(t *testing.T) {
	vals := make([]string, len(scanKeys))
	for i := range vals {
		vals[i] = "7"
	}
	vals[0] = "0"         // discipline
	vals[4] = "6"         // shapeOfTheEarth
	vals[5] = "MISSING"   // scaleFactorOfRadiusOfSphericalEarth
	vals[6] = "not_found" // scaledValueOfRadiusOfSphericalEarth
	line := strings.Join(vals, " ") + " t\n"

	msgs, err := parseScan(strings.NewReader(line + "\n" + line))
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	m := msgs[1]
	if m.Index != 2 || m.Name != "t" {
		t.Errorf("index %d name %q", m.Index, m.Name)
	}
	if v, _ := m.Section(3).Get("shapeOfTheEarth"); v != 6 {
		t.Errorf("shapeOfTheEarth = %d", v)
	}
	if v, _ := m.Section(3).Get("scaleFactorOfRadiusOfSphericalEarth"); v != Missing {
		t.Errorf("MISSING parsed as %d", v)
	}
	if _, err := m.Section(3).Get("scaledValueOfRadiusOfSphericalEarth"); err == nil {
		t.Error("not_found key should be absent")
	}
	if v, _ := m.Section(4).Get("validityTime"); v != 7 {
		t.Errorf("validityTime = %d", v)
	}
}

func TestParseScanBadLine(t *testing.T) {
	if _, err := parseScan(strings.NewReader("0 1 2 t\n")); err == nil {
		t.Error("expected an error for a short line")
	}
}

func TestParseData(t *testing.T) {
	const out = `Latitude, Longitude, Value
   21.138   237.280  2.9215e+02
   21.145   237.307 nan
   21.152   237.335  2.9230e+02
`
	vals, err := parseData(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 3 {
		t.Fatalf("got %d values", len(vals))
	}
	if vals[0] != 292.15 || !math.IsNaN(vals[1]) || vals[2] != 292.30 {
		t.Errorf("values %v", vals)
	}
}

func TestStatic(t *testing.T) {
	m1 := &Message{Index: 1, Name: "t"}
	m2 := &Message{Index: 2, Name: "sp"}
	s := Static{"f.grib2": {{Message: m1, Values: []float64{1, 2}}, {Message: m2, Values: []float64{3, 4}}}}
	ctx := context.Background()
	msgs, err := s.Scan(ctx, "f.grib2")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(msgs, []*Message{m1, m2}); len(diff) > 0 {
		t.Error(diff)
	}
	v, err := s.Values(ctx, "f.grib2", m2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(v, []float64{3, 4}); len(diff) > 0 {
		t.Error(diff)
	}
	if _, err := s.Scan(ctx, "other.grib2"); err == nil {
		t.Error("expected an error for an unknown file")
	}
}
