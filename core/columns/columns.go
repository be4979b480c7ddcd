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

// Package columns provides named, immutable column vectors backed by Arrow
// arrays. Columns are the unit the table engine gathers, concatenates and
// aggregates.
package columns

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/google/subframes/core/errs"
)

// Column is a named Arrow array. A Column never changes after construction;
// every operation returns a new Column.
type Column struct {
	name string // must be non-empty
	arr  arrow.Array
}

var mem = memory.DefaultAllocator

// New wraps an existing Arrow array.
func New(name string, arr arrow.Array) *Column {
	return &Column{name: name, arr: arr}
}

// NewInt64 creates an int64 column. valid may be nil when there are no nulls.
func NewInt64(name string, values []int64, valid []bool) *Column {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return New(name, b.NewArray())
}

// NewFloat64 creates a float64 column. valid may be nil when there are no nulls.
func NewFloat64(name string, values []float64, valid []bool) *Column {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return New(name, b.NewArray())
}

// NewString creates a string column. valid may be nil when there are no nulls.
func NewString(name string, values []string, valid []bool) *Column {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return New(name, b.NewArray())
}

// NewBool creates a boolean column. valid may be nil when there are no nulls.
func NewBool(name string, values []bool, valid []bool) *Column {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return New(name, b.NewArray())
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Len() int {
	return c.arr.Len()
}

func (c *Column) DataType() arrow.DataType {
	return c.arr.DataType()
}

// Array returns the underlying Arrow array.
func (c *Column) Array() arrow.Array {
	return c.arr
}

// IsNull reports whether row i is null. Every row of a null-typed column is
// null; such arrays carry no validity bitmap.
func (c *Column) IsNull(i int) bool {
	if c.arr.DataType().ID() == arrow.NULL {
		return true
	}
	return c.arr.IsNull(i)
}

func (c *Column) NullCount() int {
	if c.arr.DataType().ID() == arrow.NULL {
		return c.arr.Len()
	}
	return c.arr.NullN()
}

// Rename returns a column sharing the same data under another name.
func (c *Column) Rename(name string) *Column {
	return New(name, c.arr)
}

// Field returns the Arrow schema field describing this column.
func (c *Column) Field() arrow.Field {
	return arrow.Field{Name: c.name, Type: c.arr.DataType(), Nullable: true}
}

// IsInteger reports whether the column holds signed or unsigned integers.
func (c *Column) IsInteger() bool {
	return IsIntegerType(c.arr.DataType())
}

// IsNumeric reports whether the column holds integers or floats.
func (c *Column) IsNumeric() bool {
	return IsNumericType(c.arr.DataType())
}

func (c *Column) IsBoolean() bool {
	return c.arr.DataType().ID() == arrow.BOOL
}

func (c *Column) IsString() bool {
	return c.arr.DataType().ID() == arrow.STRING
}

// IsIntegerType reports whether dt is one of the integer types.
func IsIntegerType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return true
	}
	return false
}

// IsNumericType reports whether dt is an integer or floating point type.
func IsNumericType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.FLOAT32, arrow.FLOAT64:
		return true
	}
	return IsIntegerType(dt)
}

// Value returns the value at row i, or nil for a null. Integers are widened
// to int64 and floats to float64.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch a := c.arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	default:
		return a.ValueStr(i)
	}
}

// GetString returns the display form of row i. Nulls render as "(nil)".
func (c *Column) GetString(i int) (string, error) {
	if i < 0 || i >= c.arr.Len() {
		return "", errs.OutOfRange("index %d out of bounds (length: %d)", i, c.arr.Len())
	}
	return FormatValue(c.Value(i)), nil
}

// FormatValue formats a value returned by Value for display.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "(nil)"
	case float64:
		return FormatFloat64(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Ints returns the column as row positions. Only integer columns without
// nulls can be used as positions.
func (c *Column) Ints() ([]int, error) {
	if !c.IsInteger() {
		return nil, errs.InvalidArgument("column %q of type %s is not an integer column", c.name, c.DataType())
	}
	if c.NullCount() > 0 {
		return nil, errs.InvalidArgument("column %q contains nulls and cannot be used as positions", c.name)
	}
	out := make([]int, c.Len())
	for i := range out {
		out[i] = int(c.Value(i).(int64))
	}
	return out, nil
}

// Bools returns a boolean column as a row mask. Nulls select nothing.
func (c *Column) Bools() ([]bool, error) {
	b, ok := c.arr.(*array.Boolean)
	if !ok {
		return nil, errs.InvalidArgument("column %q of type %s is not a boolean column", c.name, c.DataType())
	}
	out := make([]bool, b.Len())
	for i := range out {
		out[i] = b.IsValid(i) && b.Value(i)
	}
	return out, nil
}

// Equal reports whether both columns have the same name, type and values.
func (c *Column) Equal(o *Column) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.name == o.name && array.Equal(c.arr, o.arr)
}

// TallyEntry is one distinct value and the number of rows holding it.
type TallyEntry struct {
	Value any
	Count int
}

// Tally counts distinct values in first-seen order. Nulls are counted as one
// value.
func (c *Column) Tally() []TallyEntry {
	index := make(map[any]int)
	var out []TallyEntry
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if pos, ok := index[v]; ok {
			out[pos].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, TallyEntry{Value: v, Count: 1})
	}
	return out
}

func (c *Column) String() string {
	return fmt.Sprintf("%s: %s", c.name, c.arr)
}

// TypeName returns the display name of a column type, e.g. "int64" or
// "string".
func TypeName(dt arrow.DataType) string {
	if dt.ID() == arrow.STRING {
		return "string"
	}
	return dt.String()
}
