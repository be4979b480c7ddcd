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

package csvimport

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TableSource declares how the columns of one CSV file are imported.
//
//	columns:
//	  - header: id
//	    type: string
//	  - header: amount
//	    name: amount_usd
//	    type: float64
type TableSource struct {
	Columns []ColumnDeclaration `yaml:"columns"`
}

// ColumnDeclaration is the YAML form of a ColumnSource.
type ColumnDeclaration struct {
	Header string `yaml:"header"`
	Name   string `yaml:"name,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// ParseTableSource parses a YAML document into a TableSource.
func ParseTableSource(data []byte) (*TableSource, error) {
	source := &TableSource{}
	if err := yaml.Unmarshal(data, source); err != nil {
		return nil, errors.Wrap(err, "failed to parse table source")
	}
	return source, nil
}

// ColumnSources converts the declared columns to ColumnSources keyed by
// header, suitable for use with ImportOptions.
func (s *TableSource) ColumnSources() (map[string]ColumnSource, error) {
	result := make(map[string]ColumnSource, len(s.Columns))
	for _, col := range s.Columns {
		if col.Header == "" {
			return nil, errors.Errorf("column source without header: %+v", col)
		}
		t, err := ParseColumnType(col.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", col.Header)
		}
		result[col.Header] = ColumnSource{Name: col.Name, Type: t}
	}
	return result, nil
}

// OptionsFromYAML creates ImportOptions from a YAML table source.
func OptionsFromYAML(data []byte) (ImportOptions, error) {
	source, err := ParseTableSource(data)
	if err != nil {
		return ImportOptions{}, err
	}
	options := DefaultOptions()
	if options.ColumnSources, err = source.ColumnSources(); err != nil {
		return ImportOptions{}, err
	}
	return options, nil
}
