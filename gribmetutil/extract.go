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
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gribmet"
	"github.com/spatialmodel/gribmet/grib"
)

// Extract reads the named fields from gribFile using dec and writes
// the isobaric and surface datasets as NetCDF files to
// isobaricOutput and surfaceOutput.
func Extract(ctx context.Context, dec grib.Decoder, gribFile string, fields []string, isobaricOutput, surfaceOutput string, log logrus.FieldLogger) error {
	if gribFile == "" {
		return fmt.Errorf("gribmet: GRIBFile is not specified")
	}
	if isobaricOutput == "" || surfaceOutput == "" {
		return fmt.Errorf("gribmet: IsobaricOutput and SurfaceOutput must both be specified")
	}
	if err := checkFields(fields); err != nil {
		return err
	}
	in, err := maybeDownload(ctx, gribFile, log)
	if err != nil {
		return err
	}

	l := &gribmet.Loader{Decoder: dec, Targets: fields, Log: log}
	iso, sfc, err := l.Datasets(ctx, in)
	if err != nil {
		return err
	}

	var u uploader
	outputs := []struct {
		path string
		ds   *gribmet.Dataset
	}{
		{u.maybeUpload(isobaricOutput), iso},
		{u.maybeUpload(surfaceOutput), sfc},
	}
	if u.err != nil {
		return fmt.Errorf("gribmet: preparing upload: %v", u.err)
	}
	for _, o := range outputs {
		if err := writeDataset(o.path, o.ds); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file":      o.path,
			"variables": len(o.ds.Vars),
		}).Info("wrote dataset")
	}
	return u.uploadOutput(ctx)
}

// checkFields makes sure every name is a known field.
func checkFields(fields []string) error {
	known := make(map[string]bool)
	for _, n := range gribmet.FieldNames() {
		known[n] = true
	}
	for _, f := range fields {
		if !known[f] {
			return fmt.Errorf("gribmet: unknown field %q; run 'gribmet fields' for the list of known fields", f)
		}
	}
	return nil
}

func writeDataset(path string, ds *gribmet.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gribmet: creating output file: %v", err)
	}
	if err = ds.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("gribmet: writing %s: %v", path, err)
	}
	return f.Close()
}
