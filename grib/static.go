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
	"fmt"
)

// StaticMessage is a message held in memory together with its values.
type StaticMessage struct {
	*Message
	Values []float64
}

// Static is a Decoder that serves messages held in memory,
// keyed by file name.
type Static map[string][]StaticMessage

// Scan implements Decoder.
func (s Static) Scan(ctx context.Context, filename string) ([]*Message, error) {
	msgs, ok := s[filename]
	if !ok {
		return nil, fmt.Errorf("grib: file %s not found", filename)
	}
	o := make([]*Message, len(msgs))
	for i, m := range msgs {
		o[i] = m.Message
	}
	return o, nil
}

// Values implements Decoder.
func (s Static) Values(ctx context.Context, filename string, m *Message) ([]float64, error) {
	msgs, ok := s[filename]
	if !ok {
		return nil, fmt.Errorf("grib: file %s not found", filename)
	}
	for _, sm := range msgs {
		if sm.Message == m || sm.Index == m.Index {
			v := make([]float64, len(sm.Values))
			copy(v, sm.Values)
			return v, nil
		}
	}
	return nil, fmt.Errorf("grib: message %d not found in %s", m.Index, filename)
}
