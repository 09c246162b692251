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

// Package gribmetutil holds the command line interface and
// configuration of gribmet.
package gribmetutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gribmet"
	"github.com/spatialmodel/gribmet/grib"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gribmet.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print.
              Acceptable values are 'debug', 'info', 'warning', and 'error'.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GRIBFile",
			usage: `
              GRIBFile is the path to the GRIB2 file to read. It can include
              environment variables, and it can be an http(s)://, gs://, s3://
              or file:// location, in which case it is downloaded first.`,
			shorthand:  "g",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags(), invCmd.Flags()},
		},
		{
			name: "Fields",
			usage: `
              Fields are the canonical names of the fields to extract.
              Run 'gribmet fields' for the list of known fields.`,
			defaultVal: gribmet.FieldNames(),
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "IsobaricOutput",
			usage: `
              IsobaricOutput is the path where the NetCDF file holding the fields
              on pressure levels should be written. It can include environment
              variables, and it can be a gs://, s3:// or file:// location.`,
			defaultVal: "isobaric.nc",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "SurfaceOutput",
			usage: `
              SurfaceOutput is the path where the NetCDF file holding the fields
              at the surface should be written. It can include environment
              variables, and it can be a gs://, s3:// or file:// location.`,
			defaultVal: "surface.nc",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "ECCodes.GribGet",
			usage: `
              ECCodes.GribGet is the path to the ecCodes grib_get program.`,
			defaultVal: "grib_get",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags(), invCmd.Flags()},
		},
		{
			name: "ECCodes.GribGetData",
			usage: `
              ECCodes.GribGetData is the path to the ecCodes grib_get_data program.`,
			defaultVal: "grib_get_data",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags(), invCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GRIBMET")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(extractCmd)
	Root.AddCommand(invCmd)
	Root.AddCommand(fieldsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gribmet: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setLog configures the standard logger from the LogLevel option.
func setLog() error {
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("gribmet: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return nil
}

// newDecoder returns the GRIB2 decoder the commands use.
var newDecoder = func() grib.Decoder {
	return &grib.ECCodes{
		GribGet:     os.ExpandEnv(Cfg.GetString("ECCodes.GribGet")),
		GribGetData: os.ExpandEnv(Cfg.GetString("ECCodes.GribGetData")),
		Log:         logrus.StandardLogger(),
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gribmet",
	Short: "Extract meteorology from GRIB2 files.",
	Long: `gribmet extracts meteorological fields from GRIB2 weather model output
and reorganizes them into one dataset of fields on pressure levels and one
dataset of fields at the surface. Use the subcommands specified below to
access its functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GRIBMET_var' where 'var' is the
name of the variable to be set. Path options may contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.

GRIB2 messages are decoded with the ecCodes command line tools, which
must be installed.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLog()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gribmet.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("gribmet v%s\n", gribmet.Version)
	},
	DisableAutoGenTag: true,
}

// extractCmd extracts the isobaric and surface datasets from a GRIB2 file.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract fields from a GRIB2 file",
	Long: `extract reads the fields listed in the Fields option from GRIBFile and
writes the fields on pressure levels to IsobaricOutput and the fields at
the surface to SurfaceOutput, both as NetCDF files.

	Isobaric variables (dimensions pressure [hPa], y, x):
	temperature: Air temperature [K]
	specific_humidity: Specific humidity [kg kg-1]
	height: Geopotential height [gpm]
	uwind, vwind: Wind components [m s-1]

	Surface variables (dimensions y, x):
	temperature, dewpoint: Temperature and dewpoint at 2 m [K]
	uwind, vwind: Wind components at 10 m [m s-1]
	pressure: Surface pressure [Pa]
	height: Terrain height [m]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := cast.ToStringSliceE(Cfg.Get("Fields"))
		if err != nil {
			return fmt.Errorf("gribmet: reading 'Fields': %v", err)
		}
		return Extract(
			context.Background(),
			newDecoder(),
			os.ExpandEnv(Cfg.GetString("GRIBFile")),
			fields,
			os.ExpandEnv(Cfg.GetString("IsobaricOutput")),
			os.ExpandEnv(Cfg.GetString("SurfaceOutput")),
			logrus.StandardLogger(),
		)
	},
	DisableAutoGenTag: true,
}

// invCmd lists the messages in a GRIB2 file.
var invCmd = &cobra.Command{
	Use:   "inv",
	Short: "List the messages in a GRIB2 file",
	Long: `inv lists every message in GRIBFile with its signature and the
canonical name gribmet gives it, or '-' if gribmet does not extract it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Inventory(
			context.Background(),
			cmd.OutOrStdout(),
			newDecoder(),
			os.ExpandEnv(Cfg.GetString("GRIBFile")),
			logrus.StandardLogger(),
		)
	},
	DisableAutoGenTag: true,
}

// fieldsCmd lists the fields gribmet knows about.
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the known fields",
	Long: `fields lists the fields gribmet can identify, with the GRIB2 keys
that identify them and the names they are given in the output files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return FieldTable(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
