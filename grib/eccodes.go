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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// scanKeys are the keys requested from grib_get as integers for each
// message, with the section they are stored in. shortName is always
// requested last, as a string.
var scanKeys = []struct {
	section int
	key     string
}{
	{0, "discipline"},
	{1, "dataDate"},
	{1, "dataTime"},
	{3, "gridDefinitionTemplateNumber"},
	{3, "shapeOfTheEarth"},
	{3, "scaleFactorOfRadiusOfSphericalEarth"},
	{3, "scaledValueOfRadiusOfSphericalEarth"},
	{3, "scaleFactorOfEarthMajorAxis"},
	{3, "scaledValueOfEarthMajorAxis"},
	{3, "scaleFactorOfEarthMinorAxis"},
	{3, "scaledValueOfEarthMinorAxis"},
	{3, "Nx"},
	{3, "Ny"},
	{3, "latitudeOfFirstGridPoint"},
	{3, "longitudeOfFirstGridPoint"},
	{3, "LaD"},
	{3, "LoV"},
	{3, "Dx"},
	{3, "Dy"},
	{3, "Latin1"},
	{3, "Latin2"},
	{3, "scanningMode"},
	{4, "productDefinitionTemplateNumber"},
	{4, "parameterCategory"},
	{4, "parameterNumber"},
	{4, "typeOfFirstFixedSurface"},
	{4, "scaleFactorOfFirstFixedSurface"},
	{4, "scaledValueOfFirstFixedSurface"},
	{4, "typeOfSecondFixedSurface"},
	{4, "scaleFactorOfSecondFixedSurface"},
	{4, "scaledValueOfSecondFixedSurface"},
	{4, "forecastTime"},
	{4, "validityDate"},
	{4, "validityTime"},
}

// ECCodes is a Decoder that runs the ecCodes command line tools.
type ECCodes struct {
	// GribGet and GribGetData are the commands used to launch
	// grib_get and grib_get_data. They are looked up in the system
	// path if they are not absolute. Empty values mean the default names.
	GribGet, GribGetData string

	// Log receives the standard error output of the tools.
	// If nil, the standard logger is used.
	Log logrus.FieldLogger
}

func (e *ECCodes) log() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

func (e *ECCodes) command(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// Scan implements Decoder by running grib_get once over the whole file.
func (e *ECCodes) Scan(ctx context.Context, filename string) ([]*Message, error) {
	// Without the :i suffix grib_get prints code table keys
	// as abbreviations such as "sfc" or "pl".
	keys := make([]string, 0, len(scanKeys)+1)
	for _, k := range scanKeys {
		keys = append(keys, k.key+":i")
	}
	keys = append(keys, "shortName")

	var msgs []*Message
	err := e.run(ctx, func(r io.Reader) error {
		var err error
		msgs, err = parseScan(r)
		return err
	}, e.command(e.GribGet, "grib_get"), "-p", strings.Join(keys, ","), filename)
	if err != nil {
		return nil, fmt.Errorf("grib: scanning %s: %v", filename, err)
	}
	return msgs, nil
}

// Values implements Decoder by running grib_get_data on message m.
func (e *ECCodes) Values(ctx context.Context, filename string, m *Message) ([]float64, error) {
	n, err := m.Points()
	if err != nil {
		return nil, fmt.Errorf("grib: message %d in %s: %v", m.Index, filename, err)
	}
	var vals []float64
	err = e.run(ctx, func(r io.Reader) error {
		var err error
		vals, err = parseData(r)
		return err
	}, e.command(e.GribGetData, "grib_get_data"), "-m", "nan", "-w", fmt.Sprintf("count=%d", m.Index), filename)
	if err != nil {
		return nil, fmt.Errorf("grib: reading message %d in %s: %v", m.Index, filename, err)
	}
	if len(vals) != n {
		return nil, fmt.Errorf("grib: message %d in %s: got %d values, expected %d", m.Index, filename, len(vals), n)
	}
	return vals, nil
}

// run launches the named command, parsing its standard output with
// parse while it runs.
func (e *ECCodes) run(ctx context.Context, parse func(io.Reader) error, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	// Concurrently parse the output.
	errChan := make(chan error)
	go func() {
		err := parse(stdout)
		// Drain anything left so the command can exit.
		io.Copy(ioutil.Discard, stdout)
		errChan <- err
	}()
	parseErr := <-errChan

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %s", err, msg)
		}
		return err
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		e.log().WithField("command", name).Warn(msg)
	}
	return parseErr
}

// parseScan parses the output of grib_get -p with the keys in scanKeys
// followed by shortName, one line per message.
func parseScan(r io.Reader) ([]*Message, error) {
	var msgs []*Message
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != len(scanKeys)+1 {
			return nil, fmt.Errorf("line %d: got %d values, expected %d", len(msgs)+1, len(fields), len(scanKeys)+1)
		}
		m := &Message{
			Index: len(msgs) + 1,
			Name:  fields[len(fields)-1],
		}
		for i, k := range scanKeys {
			if m.Sections[k.section] == nil {
				m.Sections[k.section] = make(Section)
			}
			switch fields[i] {
			case "not_found":
				continue
			case "MISSING":
				m.Sections[k.section][k.key] = Missing
				continue
			}
			v, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: key %s: %v", len(msgs)+1, k.key, err)
			}
			m.Sections[k.section][k.key] = v
		}
		msgs = append(msgs, m)
	}
	return msgs, s.Err()
}

// parseData parses the output of grib_get_data, returning the value
// column. Header lines are skipped.
func parseData(r io.Reader) ([]float64, error) {
	var vals []float64
	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) != 3 {
			continue
		}
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			continue // header
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: %v", len(vals)+1, err)
		}
		vals = append(vals, v)
	}
	return vals, s.Err()
}
