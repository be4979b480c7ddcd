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

// Package csvimport reads CSV data into tables and writes tables back as CSV.
// Column types are detected from the data; empty cells are nulls.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/tables"
)

// ColumnType specifies the data type for a column
type ColumnType int

const (
	// ColumnTypeAuto auto-detects type from data (default)
	ColumnTypeAuto ColumnType = iota
	// ColumnTypeString forces string type
	ColumnTypeString
	// ColumnTypeInt64 forces int64 type
	ColumnTypeInt64
	// ColumnTypeFloat64 forces float64 type
	ColumnTypeFloat64
	// ColumnTypeBool forces bool type
	ColumnTypeBool
)

var columnTypeNames = map[ColumnType]string{
	ColumnTypeAuto:    "auto",
	ColumnTypeString:  "string",
	ColumnTypeInt64:   "int64",
	ColumnTypeFloat64: "float64",
	ColumnTypeBool:    "bool",
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseColumnType returns the column type with the given name.
func ParseColumnType(name string) (ColumnType, error) {
	if name == "" {
		return ColumnTypeAuto, nil
	}
	for t, n := range columnTypeNames {
		if n == name {
			return t, nil
		}
	}
	return ColumnTypeAuto, errs.InvalidArgument("unknown column type %q", name)
}

func (t ColumnType) arrowType() arrow.DataType {
	switch t {
	case ColumnTypeInt64:
		return arrow.PrimitiveTypes.Int64
	case ColumnTypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case ColumnTypeBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

// ColumnSource defines how a column is imported
type ColumnSource struct {
	// Name is the column name (defaults to header name if not specified)
	Name string
	// Type specifies the data type for this column (default: auto-detect)
	Type ColumnType
}

// ImportOptions configures CSV import behavior
type ImportOptions struct {
	// HasHeader indicates whether the first row contains column headers
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// ColumnSources provides configuration for specific columns by header name
	ColumnSources map[string]ColumnSource
	// SampleSize is the number of rows to sample for type detection (0: all rows)
	SampleSize int
}

// DefaultOptions returns default import options
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader:     true,
		Delimiter:     ',',
		ColumnSources: make(map[string]ColumnSource),
	}
}

// ImportFromFile imports a CSV file and returns a Table
func ImportFromFile(filepath string, options ImportOptions) (*tables.Table, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// ImportFromReader imports CSV data from an io.Reader and returns a Table
func ImportFromReader(reader io.Reader, options ImportOptions) (*tables.Table, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}
	if options.Delimiter == 0 {
		options.Delimiter = ','
	}

	// The arrow reader needs the schema up front, so the records are
	// scanned once to name and type the columns.
	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.Comma = options.Delimiter
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}
	if len(records) == 0 {
		return nil, errs.InvalidArgument("CSV file is empty")
	}

	var headers []string
	dataRows := records
	if options.HasHeader {
		headers, dataRows = records[0], records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	if len(dataRows) == 0 {
		return nil, errs.InvalidArgument("CSV file has no data rows")
	}

	sample := dataRows
	if options.SampleSize > 0 && options.SampleSize < len(sample) {
		sample = sample[:options.SampleSize]
	}
	types := detectColumnTypes(headers, sample, options.ColumnSources)

	fields := make([]arrow.Field, len(headers))
	for i, header := range headers {
		fields[i] = arrow.Field{Name: header, Type: types[i].arrowType(), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	r := arrowcsv.NewReader(bytes.NewReader(data), schema,
		arrowcsv.WithComma(options.Delimiter),
		arrowcsv.WithHeader(options.HasHeader),
		arrowcsv.WithNullReader(true, ""),
		arrowcsv.WithChunk(-1),
	)
	defer r.Release()

	if !r.Next() {
		if err := r.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to parse CSV")
		}
		return nil, errs.InvalidArgument("CSV file has no data rows")
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV")
	}
	rec := r.Record()
	rec.Retain()

	level.Debug(logging.Logger).Log("msg", "imported CSV", "rows", rec.NumRows(), "columns", rec.NumCols())
	table, err := tables.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return renameColumns(table, headers, options.ColumnSources)
}

// renameColumns applies the names configured in the column sources.
func renameColumns(table *tables.Table, headers []string, configs map[string]ColumnSource) (*tables.Table, error) {
	cols := table.Columns()
	renamed := false
	for i, header := range headers {
		if src := getColumnSource(header, configs); src.Name != "" && src.Name != header {
			cols[i] = cols[i].Rename(src.Name)
			renamed = true
		}
	}
	if !renamed {
		return table, nil
	}
	return tables.New(cols...)
}

// detectColumnTypes picks the narrowest type every sampled value parses as.
// Columns without any value are strings.
func detectColumnTypes(headers []string, dataRows [][]string, configs map[string]ColumnSource) []ColumnType {
	types := make([]ColumnType, len(headers))
	for i, header := range headers {
		if config, ok := configs[header]; ok && config.Type != ColumnTypeAuto {
			types[i] = config.Type
			continue
		}

		isInt, isFloat, isBool := true, true, true
		hasNonEmpty := false
		for _, row := range dataRows {
			if i >= len(row) || row[i] == "" {
				continue
			}
			value := row[i]
			hasNonEmpty = true
			if isInt {
				if _, err := strconv.ParseInt(value, 10, 64); err != nil {
					isInt = false
				}
			}
			if isFloat {
				if _, err := strconv.ParseFloat(value, 64); err != nil {
					isFloat = false
				}
			}
			if isBool {
				isBool = isBoolLiteral(value)
			}
		}

		switch {
		case !hasNonEmpty:
			types[i] = ColumnTypeString
		case isInt:
			types[i] = ColumnTypeInt64
		case isFloat:
			types[i] = ColumnTypeFloat64
		case isBool:
			types[i] = ColumnTypeBool
		default:
			types[i] = ColumnTypeString
		}
	}
	return types
}

func isBoolLiteral(s string) bool {
	switch s {
	case "true", "false", "True", "False":
		return true
	}
	return false
}

// getColumnSource returns the config for a column, or an empty config if not specified
func getColumnSource(header string, configs map[string]ColumnSource) ColumnSource {
	if configs == nil {
		return ColumnSource{}
	}
	return configs[header]
}

// WriteCSV writes the table with a header row. Nulls are written as empty
// cells.
func WriteCSV(w io.Writer, t *tables.Table) error {
	if t.NumCols() == 0 {
		return nil
	}
	cw := arrowcsv.NewWriter(w, t.Schema(),
		arrowcsv.WithHeader(true),
		arrowcsv.WithNullWriter(""),
	)
	if err := cw.Write(t.Record()); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	if err := cw.Flush(); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	return cw.Error()
}
