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

// LevelTypeDef associates a pair of GRIB2 fixed surface type codes
// with a level type name.
type LevelTypeDef struct {
	Name          string
	First, Second int
}

// LevelTypes holds the level types known to gribmet. The first entry
// matching a pair of fixed surface types wins.
var LevelTypes = []LevelTypeDef{
	{Name: "meanSea", First: 101, Second: 255},
	{Name: "hybrid", First: 105, Second: 255},
	{Name: "atmosphere", First: 10, Second: 255},
	{Name: "atmosphereSingleLayer", First: 200, Second: 255},
	{Name: "surface", First: 1, Second: 255},
	{Name: "isobaricInhPa", First: 100, Second: 255},
	{Name: "heightAboveGround", First: 103, Second: 255},
	{Name: "depthBelowLandLayer", First: 106, Second: 106},
	{Name: "heightAboveSea", First: 102, Second: 255},
	{Name: "isobaricLayer", First: 100, Second: 100},
	{Name: "nominalTop", First: 8, Second: 255},
	{Name: "heightAboveGroundLayer", First: 103, Second: 103},
	{Name: "tropopause", First: 7, Second: 255},
	{Name: "maxWind", First: 6, Second: 255},
	{Name: "isothermZero", First: 4, Second: 255},
	{Name: "pressureFromGroundLayer", First: 108, Second: 108},
	{Name: "sigmaLayer", First: 104, Second: 104},
	{Name: "sigma", First: 104, Second: 255},
	{Name: "theta", First: 107, Second: 255},
	{Name: "potentialVorticity", First: 109, Second: 255},
}

// LevelType returns the name of the level type with the given first and
// second fixed surface types. ok is false, and name is empty, if
// the combination is not in LevelTypes.
func LevelType(first, second int) (name string, ok bool) {
	for _, lt := range LevelTypes {
		if lt.First == first && lt.Second == second {
			return lt.Name, true
		}
	}
	return "", false
}
