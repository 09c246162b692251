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

// Package gribmet extracts meteorological fields from GRIB2 weather model
// output on Lambert conformal grids, such as the HRRR, and reorganizes them
// into two gridded datasets: one holding fields on isobaric levels and one
// holding fields at or near the surface.
//
// Messages are identified by their GRIB2 discipline, parameter category,
// parameter number, product definition template and level, and renamed
// to canonical names using the FieldDefs table. Decoding of the GRIB2
// encoding itself is done by a grib.Decoder.
package gribmet

// Version gives the version number.
const Version = "0.1.0"

// DataVersion is the version of the output file format written by
// Dataset.Write.
const DataVersion = "1"
