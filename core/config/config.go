/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config reads the YAML job file of the subframes binary.
//
//	input: orders.csv
//	group_by: [region]
//	aggregate:
//	  cross:
//	    columns: [amount]
//	    functions: [count, sum, mean]
//	limit: 8
//	format: ascii
package config

import (
	"bytes"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/google/subframes/core/aggregates"
	"github.com/google/subframes/core/csvimport"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/subframes"
)

// Output formats.
const (
	FormatASCII = "ascii"
	FormatCSV   = "csv"
	FormatHTML  = "html"
)

var (
	formats   = []string{FormatASCII, FormatCSV, FormatHTML}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config is one job: which table to read, how to partition it and how to
// summarize the partition.
type Config struct {
	Input     string                        `yaml:"input"`
	Delimiter string                        `yaml:"delimiter"`
	HasHeader bool                          `yaml:"has_header"`
	Columns   []csvimport.ColumnDeclaration `yaml:"columns"`
	GroupBy   []string                      `yaml:"group_by"`
	Aggregate Aggregate                     `yaml:"aggregate"`
	Limit     int                           `yaml:"limit"`
	Format    string                        `yaml:"format"`
	LogLevel  string                        `yaml:"log_level"`

	// Sources are extra CSV files served by name.
	Sources []Source `yaml:"sources"`
}

// Aggregate holds one of the three ways to write an aggregation.
type Aggregate struct {
	Mapping []Pair `yaml:"mapping"`
	Cross   *Cross `yaml:"cross"`
	Expr    string `yaml:"expr"`
}

// Pair applies Function to Column.
type Pair struct {
	Column   string `yaml:"column"`
	Function string `yaml:"function"`
}

// Cross applies every function to every column.
type Cross struct {
	Columns   []string `yaml:"columns"`
	Functions []string `yaml:"functions"`
}

// Source is a named CSV file.
type Source struct {
	Name      string                        `yaml:"name"`
	Path      string                        `yaml:"path"`
	Delimiter string                        `yaml:"delimiter"`
	Columns   []csvimport.ColumnDeclaration `yaml:"columns"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Delimiter: ",",
		HasHeader: true,
		Limit:     subframes.DefaultLimit,
		Format:    FormatASCII,
		LogLevel:  "info",
	}
}

// Load reads and validates the job file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

// Parse decodes a job file over the defaults and validates it. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.InvalidArgument("failed to parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that decoding cannot.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return errs.InvalidArgument("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Limit < 0 {
		return errs.InvalidArgument("limit must not be negative, got %d", c.Limit)
	}
	if !slices.Contains(formats, c.Format) {
		return errs.InvalidArgument("unknown format %q, expected one of %v", c.Format, formats)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return errs.InvalidArgument("unknown log level %q, expected one of %v", c.LogLevel, logLevels)
	}
	for _, k := range c.GroupBy {
		if k == "" {
			return errs.InvalidArgument("group_by contains an empty column name")
		}
	}
	if _, err := c.Aggregation(); err != nil {
		return err
	}
	if _, err := c.ImportOptions(); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		switch {
		case s.Name == "":
			return errs.InvalidArgument("source %d has no name", i)
		case s.Path == "":
			return errs.InvalidArgument("source %q has no path", s.Name)
		case names[s.Name]:
			return errs.InvalidArgument("duplicate source %q", s.Name)
		}
		names[s.Name] = true
		if _, err := s.ImportOptions(); err != nil {
			return errors.Wrapf(err, "source %q", s.Name)
		}
	}
	return nil
}

// Aggregation builds the configured aggregation, or nil when none is set.
// At most one of mapping, cross and expr may be given.
func (c *Config) Aggregation() (subframes.Aggregation, error) {
	a := c.Aggregate
	set := 0
	for _, given := range []bool{len(a.Mapping) > 0, a.Cross != nil, a.Expr != ""} {
		if given {
			set++
		}
	}
	if set > 1 {
		return nil, errs.InvalidArgument("aggregate accepts only one of mapping, cross and expr")
	}

	switch {
	case len(a.Mapping) > 0:
		m := make(subframes.Mapping, len(a.Mapping))
		for i, p := range a.Mapping {
			if p.Column == "" {
				return nil, errs.InvalidArgument("aggregate mapping entry %d has no column", i)
			}
			if _, err := aggregates.Parse(p.Function); err != nil {
				return nil, err
			}
			m[i] = subframes.Pair{Column: p.Column, Function: p.Function}
		}
		return m, nil

	case a.Cross != nil:
		if len(a.Cross.Columns) == 0 || len(a.Cross.Functions) == 0 {
			return nil, errs.InvalidArgument("aggregate cross needs columns and functions")
		}
		for _, name := range a.Cross.Functions {
			if _, err := aggregates.Parse(name); err != nil {
				return nil, err
			}
		}
		return subframes.CrossProduct{
			Columns:   slices.Clone(a.Cross.Columns),
			Functions: slices.Clone(a.Cross.Functions),
		}, nil

	case a.Expr != "":
		return query.ParseAggregation(a.Expr)
	}
	return nil, nil
}

// ImportOptions returns the CSV options for Input.
func (c *Config) ImportOptions() (csvimport.ImportOptions, error) {
	options, err := importOptions(c.Delimiter, c.Columns)
	options.HasHeader = c.HasHeader
	return options, err
}

// ImportOptions returns the CSV options for the source. Sources always
// have a header row.
func (s Source) ImportOptions() (csvimport.ImportOptions, error) {
	delimiter := s.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	return importOptions(delimiter, s.Columns)
}

func importOptions(delimiter string, cols []csvimport.ColumnDeclaration) (csvimport.ImportOptions, error) {
	options := csvimport.DefaultOptions()
	if utf8.RuneCountInString(delimiter) != 1 {
		return options, errs.InvalidArgument("delimiter must be a single character, got %q", delimiter)
	}
	options.Delimiter, _ = utf8.DecodeRuneInString(delimiter)
	if len(cols) > 0 {
		sources, err := (&csvimport.TableSource{Columns: cols}).ColumnSources()
		if err != nil {
			return options, err
		}
		options.ColumnSources = sources
	}
	return options, nil
}
