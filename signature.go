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
	"strconv"
	"strings"

	"github.com/spatialmodel/gribmet/grib"
)

// Missing fixed surface type.
const missingSurface = 255

// Signature identifies the meteorological quantity held by a GRIB2 message.
type Signature struct {
	Discipline                int
	Category                  int
	Number                    int
	ProductDefinitionTemplate int

	// TypeOfLevel is the name of the level type, or empty if
	// the level type is not in LevelTypes.
	TypeOfLevel string

	// Level is the value of the first fixed surface, in the surface's
	// units. It is nil unless the message is on a single surface.
	Level *float64
}

// SignatureOf extracts the signature of message m.
func SignatureOf(m *grib.Message) (Signature, error) {
	var sig Signature
	discipline, err := m.Section(0).Get("discipline")
	if err != nil {
		return sig, err
	}
	sec4 := m.Section(4)
	var v [5]int64
	for i, key := range []string{
		"parameterCategory",
		"parameterNumber",
		"productDefinitionTemplateNumber",
		"typeOfFirstFixedSurface",
		"typeOfSecondFixedSurface",
	} {
		if v[i], err = sec4.Get(key); err != nil {
			return sig, err
		}
	}
	factor, err := sec4.Get("scaleFactorOfFirstFixedSurface")
	if err != nil {
		return sig, err
	}
	value, err := sec4.Get("scaledValueOfFirstFixedSurface")
	if err != nil {
		return sig, err
	}

	first, second := int(v[3]), int(v[4])
	sig = Signature{
		Discipline:                int(discipline),
		Category:                  int(v[0]),
		Number:                    int(v[1]),
		ProductDefinitionTemplate: int(v[2]),
	}
	sig.TypeOfLevel, _ = LevelType(first, second)
	if first != missingSurface && second == missingSurface {
		level := grib.Unscale(value, factor)
		sig.Level = &level
	}
	return sig, nil
}

// String returns a compact representation of the signature, which is
// stored with each output variable.
func (s Signature) String() string {
	parts := []string{
		"discipline=" + strconv.Itoa(s.Discipline),
		"parameterCategory=" + strconv.Itoa(s.Category),
		"parameterNumber=" + strconv.Itoa(s.Number),
		"productDefinitionTemplateNumber=" + strconv.Itoa(s.ProductDefinitionTemplate),
	}
	if s.TypeOfLevel != "" {
		parts = append(parts, "typeOfLevel="+s.TypeOfLevel)
	}
	if s.Level != nil {
		parts = append(parts, fmt.Sprintf("level=%g", *s.Level))
	}
	return strings.Join(parts, " ")
}
