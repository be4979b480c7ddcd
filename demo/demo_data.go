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

// Package demo provides small tables for trying out the binary without any
// input file.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/google/subframes/core/csvimport"
	"github.com/google/subframes/core/tables"
	"github.com/google/subframes/datasources"
)

//go:embed data/sample.csv
var sampleCSV string

//go:embed data/orders.csv
var ordersCSV string

//go:embed data/annotations.yaml
var annotations []byte

var tableOptions map[string]csvimport.ImportOptions

func init() {
	var err error
	tableOptions, err = parseAnnotations(annotations)
	if err != nil {
		panic(fmt.Sprintf("failed to parse annotations: %v", err))
	}
}

func parseAnnotations(data []byte) (map[string]csvimport.ImportOptions, error) {
	var sources map[string]csvimport.TableSource
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, err
	}
	options := make(map[string]csvimport.ImportOptions, len(sources))
	for name, source := range sources {
		opts := csvimport.DefaultOptions()
		cols, err := source.ColumnSources()
		if err != nil {
			return nil, errors.Wrapf(err, "table %s", name)
		}
		opts.ColumnSources = cols
		options[name] = opts
	}
	return options, nil
}

// importTable imports an embedded CSV table using the pre-parsed annotations
func importTable(name, csv string) *tables.Table {
	options, ok := tableOptions[name]
	if !ok {
		panic(fmt.Sprintf("no annotations found for table %s", name))
	}

	table, err := csvimport.ImportFromReader(strings.NewReader(csv), options)
	if err != nil {
		panic(fmt.Sprintf("failed to import %s CSV: %v", name, err))
	}
	return table
}

// SampleTable returns six rows of x (int64), y (string) and z (bool, with
// one null). Grouped by y it splits into sub-frames of sizes 2, 3 and 1.
func SampleTable() *tables.Table {
	return importTable("sample", sampleCSV)
}

// OrdersTable returns twenty orders with region, status, category, amount
// and quantity.
func OrdersTable() *tables.Table {
	return importTable("orders", ordersCSV)
}

// Register adds the demo tables to m as "sample" and "orders".
func Register(m *datasources.Manager) error {
	if err := m.Register("sample", SampleTable()); err != nil {
		return err
	}
	return m.Register("orders", OrdersTable())
}
