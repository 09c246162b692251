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

// Package grib holds the message metadata model shared by GRIB2 decoders
// and the decoders themselves.
package grib

import (
	"context"
	"fmt"
	"math"
)

// Missing is the value a decoder stores for a key that is present in a
// message but coded as missing.
const Missing int64 = math.MinInt64

// Section holds the integer-valued keys of one GRIB2 section.
type Section map[string]int64

// Get returns the value of key, or an error if the section
// does not contain it.
func (s Section) Get(key string) (int64, error) {
	v, ok := s[key]
	if !ok {
		return 0, fmt.Errorf("grib: key %q not found", key)
	}
	return v, nil
}

// Message is the decoded metadata of one GRIB2 message.
type Message struct {
	// Index is the 1-based position of the message in its file.
	Index int

	// Name is the decoder's short name for the parameter, e.g. "t".
	Name string

	// Sections holds the keys of sections 0 through 7.
	Sections [8]Section
}

// Section returns section n of the message. Sections that were never
// populated are returned empty rather than nil.
func (m *Message) Section(n int) Section {
	if n < 0 || n >= len(m.Sections) || m.Sections[n] == nil {
		return Section{}
	}
	return m.Sections[n]
}

// Points returns the number of grid points in the message, as given
// by Nx and Ny in section 3.
func (m *Message) Points() (int, error) {
	sec := m.Section(3)
	nx, err := sec.Get("Nx")
	if err != nil {
		return 0, err
	}
	ny, err := sec.Get("Ny")
	if err != nil {
		return 0, err
	}
	return int(nx * ny), nil
}

// A Decoder reads GRIB2 files.
type Decoder interface {
	// Scan returns the metadata of every message in filename,
	// in file order.
	Scan(ctx context.Context, filename string) ([]*Message, error)

	// Values returns the data values of message m in filename in scan
	// order. Missing points are NaN.
	Values(ctx context.Context, filename string, m *Message) ([]float64, error)
}

// Unscale returns value / 10^factor, the GRIB2 convention for storing
// real numbers as scaled integers. The result is NaN if either
// input is Missing.
func Unscale(value, factor int64) float64 {
	if value == Missing || factor == Missing {
		return math.NaN()
	}
	return float64(value) / math.Pow(10, float64(factor))
}
