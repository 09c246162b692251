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

// FieldDef gives the canonical name of the field with the given
// signature keys.
type FieldDef struct {
	Name                      string
	Discipline                int
	Category                  int
	Number                    int
	ProductDefinitionTemplate int
	TypeOfLevel               string

	// Level, if not nil, restricts the definition to a single level.
	Level *float64

	// Units are the units of the decoded values.
	Units string
}

// Matches returns whether sig agrees with d on every key d specifies.
func (d FieldDef) Matches(sig Signature) bool {
	if d.Discipline != sig.Discipline || d.Category != sig.Category ||
		d.Number != sig.Number || d.ProductDefinitionTemplate != sig.ProductDefinitionTemplate ||
		d.TypeOfLevel != sig.TypeOfLevel {
		return false
	}
	if d.Level == nil {
		return true
	}
	return sig.Level != nil && *sig.Level == *d.Level
}

func level(v float64) *float64 { return &v }

// FieldDefs are the fields gribmet knows how to identify, in match order.
// Names ending in "_isobaric" are on pressure levels and names ending in
// "_surface" are at or near the ground.
var FieldDefs = []FieldDef{
	{Name: "air_temperature_isobaric", Category: 0, Number: 0, TypeOfLevel: "isobaricInhPa", Units: "K"},
	{Name: "specific_humidity_isobaric", Category: 1, Number: 0, TypeOfLevel: "isobaricInhPa", Units: "kg kg-1"},
	{Name: "geopotential_height_isobaric", Category: 3, Number: 5, TypeOfLevel: "isobaricInhPa", Units: "gpm"},
	{Name: "u_wind_isobaric", Category: 2, Number: 2, TypeOfLevel: "isobaricInhPa", Units: "m s-1"},
	{Name: "v_wind_isobaric", Category: 2, Number: 3, TypeOfLevel: "isobaricInhPa", Units: "m s-1"},
	{Name: "latitude", Category: 191, Number: 192, TypeOfLevel: "surface", Units: "degrees_north"},
	{Name: "longitude", Category: 191, Number: 193, TypeOfLevel: "surface", Units: "degrees_east"},
	{Name: "u_wind_surface", Category: 2, Number: 2, TypeOfLevel: "heightAboveGround", Level: level(10), Units: "m s-1"},
	{Name: "v_wind_surface", Category: 2, Number: 3, TypeOfLevel: "heightAboveGround", Level: level(10), Units: "m s-1"},
	{Name: "pressure_surface", Category: 3, Number: 0, TypeOfLevel: "surface", Units: "Pa"},
	{Name: "air_temperature_surface", Category: 0, Number: 0, TypeOfLevel: "heightAboveGround", Level: level(2), Units: "K"},
	{Name: "dewpoint_temperature_surface", Category: 0, Number: 6, TypeOfLevel: "heightAboveGround", Level: level(2), Units: "K"},
	{Name: "terrain_height_surface", Category: 3, Number: 5, TypeOfLevel: "surface", Units: "m"},
}

// CanonicalName returns the name of the first entry in FieldDefs
// matching sig.
func CanonicalName(sig Signature) (def FieldDef, ok bool) {
	for _, d := range FieldDefs {
		if d.Matches(sig) {
			return d, true
		}
	}
	return FieldDef{}, false
}

// FieldNames returns the names of all entries in FieldDefs, in order.
func FieldNames() []string {
	o := make([]string, len(FieldDefs))
	for i, d := range FieldDefs {
		o[i] = d.Name
	}
	return o
}

// ShortNames maps canonical field names to the names used
// in the output datasets.
var ShortNames = map[string]string{
	"air_temperature_surface":      "temperature",
	"dewpoint_temperature_surface": "dewpoint",
	"u_wind_surface":               "uwind",
	"v_wind_surface":               "vwind",
	"pressure_surface":             "pressure",
	"terrain_height_surface":       "height",
	"specific_humidity_isobaric":   "specific_humidity",
	"air_temperature_isobaric":     "temperature",
	"u_wind_isobaric":              "uwind",
	"v_wind_isobaric":              "vwind",
	"geopotential_height_isobaric": "height",
}
