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

package gribmetutil

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spatialmodel/gribmet"
	"github.com/spatialmodel/gribmet/grib"
	"github.com/spatialmodel/gribmet/grib/gribtest"
)

// testFile does not exist on disk; it is served by the static decoder.
const testFile = "hrrr.t12z.wrfprsf01.grib2"

func init() {
	newDecoder = func() grib.Decoder {
		return grib.Static{testFile: gribtest.HRRR()}
	}
}

func readDataset(t *testing.T, path string) *gribmet.Dataset {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ds, err := gribmet.ReadDataset(f)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestExtract(t *testing.T) {
	dir, err := ioutil.TempDir("", "gribmet")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	Cfg.Set("GRIBFile", testFile)
	Cfg.Set("Fields", gribmet.FieldNames())
	Cfg.Set("IsobaricOutput", filepath.Join(dir, "isobaric.nc"))
	Cfg.Set("SurfaceOutput", filepath.Join(dir, "surface.nc"))
	Root.SetArgs([]string{"extract"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	iso := readDataset(t, filepath.Join(dir, "isobaric.nc"))
	wantIso := []string{"height", "specific_humidity", "temperature", "uwind", "vwind"}
	if !reflect.DeepEqual(iso.VarNames(), wantIso) {
		t.Errorf("isobaric variables: %v != %v", iso.VarNames(), wantIso)
	}
	p, ok := iso.Index("pressure")
	if !ok {
		t.Fatal("isobaric dataset has no pressure index")
	}
	if n := len(p.Data.Elements); n != 2 {
		t.Errorf("isobaric dataset has %d pressure levels; want 2", n)
	}

	sfc := readDataset(t, filepath.Join(dir, "surface.nc"))
	wantSfc := []string{"dewpoint", "height", "pressure", "temperature", "uwind", "vwind"}
	if !reflect.DeepEqual(sfc.VarNames(), wantSfc) {
		t.Errorf("surface variables: %v != %v", sfc.VarNames(), wantSfc)
	}
}

func TestExtractSubset(t *testing.T) {
	dir, err := ioutil.TempDir("", "gribmet")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	Cfg.Set("GRIBFile", testFile)
	Cfg.Set("Fields", []string{"air_temperature_isobaric", "air_temperature_surface"})
	Cfg.Set("IsobaricOutput", filepath.Join(dir, "isobaric.nc"))
	Cfg.Set("SurfaceOutput", filepath.Join(dir, "surface.nc"))
	defer Cfg.Set("Fields", gribmet.FieldNames())
	Root.SetArgs([]string{"extract"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"isobaric.nc", "surface.nc"} {
		ds := readDataset(t, filepath.Join(dir, name))
		if !reflect.DeepEqual(ds.VarNames(), []string{"temperature"}) {
			t.Errorf("%s variables: %v", name, ds.VarNames())
		}
	}
}

func TestExtractUnknownField(t *testing.T) {
	Cfg.Set("GRIBFile", testFile)
	Cfg.Set("Fields", []string{"air_temperature_isobaric", "cloud_cover"})
	defer Cfg.Set("Fields", gribmet.FieldNames())
	Root.SetArgs([]string{"extract"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	err := Root.Execute()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "cloud_cover") {
		t.Errorf("error %q does not name the unknown field", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	Cfg.Set("GRIBFile", "")
	defer Cfg.Set("GRIBFile", testFile)
	Root.SetArgs([]string{"extract"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestInv(t *testing.T) {
	Cfg.Set("GRIBFile", testFile)
	Root.SetArgs([]string{"inv"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(gribtest.HRRR())+1 {
		t.Fatalf("inventory has %d lines; want %d:\n%s", len(lines), len(gribtest.HRRR())+1, buf.String())
	}
	for _, want := range []struct {
		line  int
		parts []string
	}{
		{line: 0, parts: []string{"message", "field"}},
		{line: 1, parts: []string{"gh", "isobaricInhPa", "100000", "geopotential_height_isobaric"}},
		{line: 13, parts: []string{"2t", "heightAboveGround", "air_temperature_surface"}},
		{line: 17, parts: []string{"refc", "-"}},
	} {
		for _, p := range want.parts {
			if !strings.Contains(lines[want.line], p) {
				t.Errorf("line %d %q does not contain %q", want.line, lines[want.line], p)
			}
		}
	}
}

func TestFields(t *testing.T) {
	Root.SetArgs([]string{"fields"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(gribmet.FieldDefs)+1 {
		t.Fatalf("field table has %d lines; want %d", len(lines), len(gribmet.FieldDefs)+1)
	}
	for _, d := range gribmet.FieldDefs {
		if !strings.Contains(buf.String(), d.Name) {
			t.Errorf("field table is missing %s", d.Name)
		}
	}
}

func TestVersion(t *testing.T) {
	Root.SetArgs([]string{"version"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "gribmet v" + gribmet.Version + "\n"; buf.String() != want {
		t.Errorf("%q != %q", buf.String(), want)
	}
}

func TestLogLevel(t *testing.T) {
	Cfg.Set("LogLevel", "loud")
	defer Cfg.Set("LogLevel", "info")
	Root.SetArgs([]string{"version"})
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}
