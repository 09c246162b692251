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

// Package gribtest builds synthetic GRIB2 messages on a small
// HRRR-like Lambert conformal grid for use in tests.
package gribtest

import "github.com/spatialmodel/gribmet/grib"

// Grid dimensions of the synthetic messages.
const (
	Nx = 3
	Ny = 2
)

// Section3 returns a grid definition section for an Nx by Ny
// Lambert conformal grid with the HRRR projection parameters
// and 3 km spacing.
func Section3() grib.Section {
	return grib.Section{
		"gridDefinitionTemplateNumber":        30,
		"shapeOfTheEarth":                     6,
		"scaleFactorOfRadiusOfSphericalEarth": grib.Missing,
		"scaledValueOfRadiusOfSphericalEarth": grib.Missing,
		"scaleFactorOfEarthMajorAxis":         grib.Missing,
		"scaledValueOfEarthMajorAxis":         grib.Missing,
		"scaleFactorOfEarthMinorAxis":         grib.Missing,
		"scaledValueOfEarthMinorAxis":         grib.Missing,
		"Nx":                                  Nx,
		"Ny":                                  Ny,
		"latitudeOfFirstGridPoint":            38500000,
		"longitudeOfFirstGridPoint":           262500000,
		"LaD":                                 38500000,
		"LoV":                                 262500000,
		"Dx":                                  3000000,
		"Dy":                                  3000000,
		"Latin1":                              38500000,
		"Latin2":                              38500000,
		"scanningMode":                        64,
	}
}

// Message returns a message for parameter (category, number) of
// discipline 0 on a level given by its first and second fixed surface
// types and the unscaled first surface value.
func Message(index int, name string, category, number, first, second, value int64) *grib.Message {
	m := &grib.Message{Index: index, Name: name}
	m.Sections[0] = grib.Section{"discipline": 0}
	m.Sections[1] = grib.Section{"dataDate": 20240101, "dataTime": 1200}
	m.Sections[3] = Section3()
	m.Sections[4] = grib.Section{
		"productDefinitionTemplateNumber": 0,
		"parameterCategory":               category,
		"parameterNumber":                 number,
		"typeOfFirstFixedSurface":         first,
		"scaleFactorOfFirstFixedSurface":  0,
		"scaledValueOfFirstFixedSurface":  value,
		"typeOfSecondFixedSurface":        second,
		"scaleFactorOfSecondFixedSurface": grib.Missing,
		"scaledValueOfSecondFixedSurface": grib.Missing,
		"forecastTime":                    1,
		"validityDate":                    20240101,
		"validityTime":                    1300,
	}
	return m
}

// Isobaric returns a message on the isobaric surface at pressure pa.
func Isobaric(index int, name string, category, number, pa int64) *grib.Message {
	return Message(index, name, category, number, 100, 255, pa)
}

// Surface returns a message on the ground surface.
func Surface(index int, name string, category, number int64) *grib.Message {
	return Message(index, name, category, number, 1, 255, 0)
}

// AboveGround returns a message at height m above the ground.
func AboveGround(index int, name string, category, number, m int64) *grib.Message {
	return Message(index, name, category, number, 103, 255, m)
}

// Fill pairs m with Nx*Ny values computed by f from the point index.
func Fill(m *grib.Message, f func(i int) float64) grib.StaticMessage {
	v := make([]float64, Nx*Ny)
	for i := range v {
		v[i] = f(i)
	}
	return grib.StaticMessage{Message: m, Values: v}
}

// Constant pairs m with Nx*Ny copies of v.
func Constant(m *grib.Message, v float64) grib.StaticMessage {
	return Fill(m, func(int) float64 { return v })
}

// HRRR returns the contents of a small file holding two isobaric levels
// of temperature, u and v wind, specific humidity and geopotential
// height, the surface fields gribmet extracts, the latitude and
// longitude fields, and one field no table entry matches.
func HRRR() []grib.StaticMessage {
	var o []grib.StaticMessage
	add := func(m *grib.Message, f func(i int) float64) {
		m.Index = len(o) + 1
		o = append(o, Fill(m, f))
	}
	for _, pa := range []int64{100000, 85000} {
		p := float64(pa)
		add(Isobaric(0, "gh", 3, 5, pa), func(i int) float64 { return 1500 - p/100 + float64(i) })
		add(Isobaric(0, "t", 0, 0, pa), func(i int) float64 { return 250 + p/10000 + float64(i) })
		add(Isobaric(0, "q", 1, 0, pa), func(i int) float64 { return 0.001 * p / 100000 })
		add(Isobaric(0, "u", 2, 2, pa), func(i int) float64 { return float64(i) })
		add(Isobaric(0, "v", 2, 3, pa), func(i int) float64 { return -float64(i) })
	}
	add(Surface(0, "sp", 3, 0), func(i int) float64 { return 101325 - float64(i) })
	add(Surface(0, "orog", 3, 5), func(i int) float64 { return 100 * float64(i) })
	add(AboveGround(0, "2t", 0, 0, 2), func(i int) float64 { return 290 + float64(i) })
	add(AboveGround(0, "2d", 0, 6, 2), func(i int) float64 { return 280 + float64(i) })
	add(AboveGround(0, "10u", 2, 2, 10), func(i int) float64 { return 3 })
	add(AboveGround(0, "10v", 2, 3, 10), func(i int) float64 { return -3 })
	add(Message(0, "refc", 16, 196, 10, 255, 0), func(i int) float64 { return 5 })
	add(Surface(0, "nlat", 191, 192), func(i int) float64 { return 38.5 + 0.027*float64(i/Nx) })
	add(Surface(0, "elon", 191, 193), func(i int) float64 { return 262.5 + 0.034*float64(i%Nx) })
	return o
}
