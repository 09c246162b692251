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
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gribmet"
	"github.com/spatialmodel/gribmet/grib"
)

// Inventory writes a table describing every message in gribFile to out.
func Inventory(ctx context.Context, out io.Writer, dec grib.Decoder, gribFile string, log logrus.FieldLogger) error {
	if gribFile == "" {
		return fmt.Errorf("gribmet: GRIBFile is not specified")
	}
	in, err := maybeDownload(ctx, gribFile, log)
	if err != nil {
		return err
	}
	msgs, err := dec.Scan(ctx, in)
	if err != nil {
		return fmt.Errorf("gribmet: inventory of %s: %v", gribFile, err)
	}
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "message\tname\tdiscipline\tcategory\tnumber\ttemplate\tlevel type\tlevel\tfield")
	for _, m := range msgs {
		sig, err := gribmet.SignatureOf(m)
		if err != nil {
			return fmt.Errorf("gribmet: inventory of %s: message %d: %v", gribFile, m.Index, err)
		}
		field := "-"
		if def, ok := gribmet.CanonicalName(sig); ok {
			field = def.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n", m.Index, m.Name,
			sig.Discipline, sig.Category, sig.Number, sig.ProductDefinitionTemplate,
			orDash(sig.TypeOfLevel), levelString(sig.Level), field)
	}
	return w.Flush()
}

// FieldTable writes the fields gribmet can identify to out.
func FieldTable(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	fmt.Fprintln(w, "field\toutput name\tdiscipline\tcategory\tnumber\ttemplate\tlevel type\tlevel\tunits")
	for _, d := range gribmet.FieldDefs {
		short, ok := gribmet.ShortNames[d.Name]
		if !ok {
			short = d.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n", d.Name, short,
			d.Discipline, d.Category, d.Number, d.ProductDefinitionTemplate,
			d.TypeOfLevel, levelString(d.Level), orDash(d.Units))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func levelString(l *float64) string {
	if l == nil {
		return "-"
	}
	return strconv.FormatFloat(*l, 'g', -1, 64)
}
