// Package cli implements the cfgeom command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	cfgeom "github.com/tingold/orb-cfgeom"
	"github.com/tingold/orb-cfgeom/store"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by every command.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
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
			name: "loglevel",
			usage: `
              loglevel sets the logging level (debug, info, warn, error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "input",
			usage: `
              input is the directory holding the geometry layers to
              convert: *.wkt (one WKT geometry per line), *.geojson,
              *.fgb and *.json (container records).`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the directory the converted files and their CDL
              dumps are written to. It is created if missing.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "encoding",
			usage: `
              encoding lists the outputs to write per layer: cra
              (netCDF classic, <name>_cra.nc), vlen (JSON store
              snapshot, <name>_vlen.ncjson), fgb (FlatGeobuf,
              <name>.fgb), or both (cra and vlen).`,
			defaultVal: []string{"both"},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "prefix",
			usage: `
              prefix is prepended to the variable names written to each
              store.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "jobs",
			usage: `
              jobs is the number of layers converted in parallel.`,
			shorthand:  "j",
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "container",
			usage: `
              container names the geometry container variables to read.
              By default every container in the file is read.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{readCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CFGEOM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			if err := Cfg.BindPFlag(option.name, set.Lookup(option.name)); err != nil {
				panic(err)
			}
		}
	}

	Root.AddCommand(convertCmd)
	Root.AddCommand(dumpCmd)
	Root.AddCommand(readCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and applies the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cfgeom: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("cfgeom: %v", err)
	}
	Log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cfgeom",
	Short: "Convert geometries to and from CF simple-geometry arrays.",
	Long: `cfgeom encodes point, line and polygon layers as the contiguous ragged
(CRA) or variable-length (VLEN) arrays of the CF conventions' simple
geometries, and reads them back.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CFGEOM_var' where 'var' is
the name of the variable to be set.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a directory of geometry layers.",
	Long: `convert reads every geometry layer in --input and writes one file per
requested encoding to --output, each followed by a CDL dump (<file>.cdl).
Layers are converted in parallel.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		encodings, err := parseEncodings(cast.ToStringSlice(Cfg.Get("encoding")))
		if err != nil {
			return err
		}
		jobs, err := cast.ToIntE(Cfg.Get("jobs"))
		if err != nil {
			return fmt.Errorf("cfgeom: invalid jobs: %v", err)
		}
		c := &Converter{
			Input:     Cfg.GetString("input"),
			Output:    Cfg.GetString("output"),
			Encodings: encodings,
			Prefix:    Cfg.GetString("prefix"),
			Jobs:      jobs,
			Log:       Log,
		}
		return c.Run(cmd.Context())
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE...",
	Short: "Print the CDL rendering of store files.",
	Long: `dump prints each .nc or .ncjson store file in CDL, the text form
printed by ncdump.`,
	Args:              cobra.MinimumNArgs(1),
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if err := dumpFile(cmd.OutOrStdout(), path); err != nil {
				return err
			}
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read FILE",
	Short: "Print the geometry containers of a store file as JSON records.",
	Args:  cobra.ExactArgs(1),
	Long: `read decodes the geometry containers in a .nc or .ncjson store file
and prints each one as a JSON record.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := cast.ToStringSlice(Cfg.Get("container"))
		containers, err := cfgeom.ReadFile(args[0], names...)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(containers))
		for k := range containers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b, err := cfgeom.MarshalContainer(containers[k])
			if err != nil {
				return err
			}
			Log.WithFields(logrus.Fields{
				"file":       args[0],
				"container":  k,
				"geometries": containers[k].Len(),
			}).Debug("read container")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
		}
		return nil
	},
}

// Output kinds written by convert.
const (
	outCRA  = "cra"
	outVLEN = "vlen"
	outFGB  = "fgb"
)

// parseEncodings expands and validates the encoding list.
func parseEncodings(in []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for _, s := range in {
		for _, e := range strings.Split(s, ",") {
			switch e = strings.ToLower(strings.TrimSpace(e)); e {
			case "both":
				add(outCRA)
				add(outVLEN)
			case outCRA, outVLEN, outFGB:
				add(e)
			case "":
			default:
				return nil, fmt.Errorf("cfgeom: unknown encoding %q", e)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cfgeom: no encoding requested")
	}
	return out, nil
}

// dumpFile writes the CDL rendering of the store file at path.
func dumpFile(w io.Writer, path string) error {
	s, err := cfgeom.OpenFile(path)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return store.Dump(w, name, s)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := Root.Execute(); err != nil {
		Log.WithError(err).Error("cfgeom failed")
		os.Exit(1)
	}
}
