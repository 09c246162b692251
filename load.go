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
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gribmet/grib"
)

// Loader reads fields from GRIB2 files.
type Loader struct {
	Decoder grib.Decoder

	// Targets are the names of the fields to keep. If empty,
	// every field in FieldDefs is kept.
	Targets []string

	// Log receives progress messages. If nil, the standard
	// logger is used.
	Log logrus.FieldLogger
}

func (l *Loader) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l *Loader) targets() map[string]bool {
	names := l.Targets
	if len(names) == 0 {
		names = FieldNames()
	}
	o := make(map[string]bool, len(names))
	for _, n := range names {
		o[n] = true
	}
	return o
}

// Fields returns the fields in filename whose names are among the
// targets, in file order, with their values read. Other messages are
// skipped without being decoded.
func (l *Loader) Fields(ctx context.Context, filename string) ([]*Field, error) {
	if l.Decoder == nil {
		return nil, fmt.Errorf("gribmet: no decoder")
	}
	log := l.log().WithField("file", filename)
	msgs, err := l.Decoder.Scan(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("gribmet: loading %s: %v", filename, err)
	}
	targets := l.targets()
	var fields []*Field
	skipped := 0
	for _, m := range msgs {
		f, err := Annotate(m, filename)
		if err != nil {
			return nil, fmt.Errorf("gribmet: loading %s: %v", filename, err)
		}
		if !targets[f.Name] {
			skipped++
			log.WithFields(logrus.Fields{
				"message":   m.Index,
				"field":     f.Name,
				"signature": f.Signature.String(),
			}).Debug("skipping field")
			continue
		}
		vals, err := l.Decoder.Values(ctx, filename, m)
		if err != nil {
			return nil, fmt.Errorf("gribmet: loading %s: %v", filename, err)
		}
		fields = append(fields, f.WithValues(vals))
	}
	log.WithFields(logrus.Fields{
		"kept":    len(fields),
		"skipped": skipped,
	}).Info("loaded fields")
	return fields, nil
}

// Datasets loads filename and assembles its fields into an isobaric
// and a surface dataset.
func (l *Loader) Datasets(ctx context.Context, filename string) (isobaric, surface *Dataset, err error) {
	fields, err := l.Fields(ctx, filename)
	if err != nil {
		return nil, nil, err
	}
	return Assemble(fields)
}

// Load reads every known field in filename using dec and returns the
// isobaric and surface datasets.
func Load(ctx context.Context, dec grib.Decoder, filename string) (isobaric, surface *Dataset, err error) {
	l := &Loader{Decoder: dec}
	return l.Datasets(ctx, filename)
}
