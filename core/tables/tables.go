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

// Package tables implements the immutable columnar Table the partition engine
// works on. A Table is an Arrow record batch with an index of its columns by
// name. Every operation allocates a new Table; column data is shared where no
// copy is needed.
package tables

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
)

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	record arrow.RecordBatch
	cols   []*columns.Column
	index  map[string]int // column name -> position in cols
	nrows  int
}

var empty = &Table{
	record: array.NewRecordBatch(arrow.NewSchema(nil, nil), nil, 0),
	index:  map[string]int{},
}

// Empty returns the canonical empty table: no columns, no rows.
func Empty() *Table {
	return empty
}

// New creates a table from columns. Names must be unique and non-empty and
// all columns must have the same length. No columns yields Empty().
func New(cols ...*columns.Column) (*Table, error) {
	if len(cols) == 0 {
		return Empty(), nil
	}

	nrows := cols[0].Len()
	index := make(map[string]int, len(cols))
	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	for i, col := range cols {
		if col == nil {
			return nil, errs.InvalidArgument("column %d is nil", i)
		}
		name := col.Name()
		if name == "" {
			return nil, errs.InvalidArgument("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, errs.InvalidArgument("duplicate column name %q", name)
		}
		if col.Len() != nrows {
			return nil, errs.InvalidArgument("column %q has %d rows, expected %d", name, col.Len(), nrows)
		}
		index[name] = i
		fields[i] = col.Field()
		arrs[i] = col.Array()
	}

	return &Table{
		record: array.NewRecordBatch(arrow.NewSchema(fields, nil), arrs, int64(nrows)),
		cols:   append([]*columns.Column(nil), cols...),
		index:  index,
		nrows:  nrows,
	}, nil
}

// MustNew is like New but panics on error. It is meant for table literals.
func MustNew(cols ...*columns.Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecord wraps an Arrow record batch.
func FromRecord(rec arrow.RecordBatch) (*Table, error) {
	if rec == nil {
		return nil, errs.InvalidArgument("not a Table: nil record")
	}
	schema := rec.Schema()
	cols := make([]*columns.Column, rec.NumCols())
	for i := range cols {
		cols[i] = columns.New(schema.Field(i).Name, rec.Column(i))
	}
	if len(cols) == 0 {
		return Empty(), nil
	}
	return New(cols...)
}

// Record returns the underlying Arrow record batch.
func (t *Table) Record() arrow.RecordBatch {
	return t.record
}

func (t *Table) Schema() *arrow.Schema {
	return t.record.Schema()
}

func (t *Table) NumRows() int {
	return t.nrows
}

func (t *Table) NumCols() int {
	return len(t.cols)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.nrows == 0
}

// Keys returns the column names in order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.cols))
	for i, c := range t.cols {
		keys[i] = c.Name()
	}
	return keys
}

func (t *Table) HasKey(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingKeys returns the names that are not columns of t, in input order.
func (t *Table) MissingKeys(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !t.HasKey(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Column returns the named column.
func (t *Table) Column(name string) (*columns.Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errs.InvalidArgument("%q is not a key of the table %v", name, t.Keys())
	}
	return t.cols[i], nil
}

// Columns returns the columns in order.
func (t *Table) Columns() []*columns.Column {
	return append([]*columns.Column(nil), t.cols...)
}

// normalize maps positions in [-n, n) onto [0, n).
func (t *Table) normalize(indices []int) ([]int, error) {
	out := make([]int, len(indices))
	for k, i := range indices {
		if i < -t.nrows || i >= t.nrows {
			return nil, errs.OutOfRange("index %d out of range for %d rows", i, t.nrows)
		}
		if i < 0 {
			i += t.nrows
		}
		out[k] = i
	}
	return out, nil
}

// Take selects rows by position. Negative positions count from the end;
// repeats and any order are allowed.
func (t *Table) Take(indices []int) (*Table, error) {
	norm, err := t.normalize(indices)
	if err != nil {
		return nil, err
	}
	if len(t.cols) == 0 {
		return Empty(), nil
	}
	cols := make([]*columns.Column, len(t.cols))
	for i, c := range t.cols {
		if cols[i], err = c.Take(norm); err != nil {
			return nil, err
		}
	}
	return New(cols...)
}

// Slice selects rows by position with the same contract as Take. Runs of
// consecutive ascending positions are shared with t instead of copied.
func (t *Table) Slice(indices []int) (*Table, error) {
	norm, err := t.normalize(indices)
	if err != nil {
		return nil, err
	}
	if len(norm) > 0 && isRun(norm) {
		return t.sliceRange(norm[0], norm[len(norm)-1]+1)
	}
	return t.Take(norm)
}

func isRun(indices []int) bool {
	for k := 1; k < len(indices); k++ {
		if indices[k] != indices[k-1]+1 {
			return false
		}
	}
	return true
}

func (t *Table) sliceRange(from, to int) (*Table, error) {
	if len(t.cols) == 0 {
		return Empty(), nil
	}
	cols := make([]*columns.Column, len(t.cols))
	for i, c := range t.cols {
		var err error
		if cols[i], err = c.Slice(from, to); err != nil {
			return nil, err
		}
	}
	return New(cols...)
}

// Head returns the first n rows (fewer if the table is shorter).
func (t *Table) Head(n int) *Table {
	h, _ := t.sliceRange(0, min(max(n, 0), t.nrows))
	return h
}

// Tail returns the last n rows (fewer if the table is shorter).
func (t *Table) Tail(n int) *Table {
	tl, _ := t.sliceRange(t.nrows-min(max(n, 0), t.nrows), t.nrows)
	return tl
}

// Filter selects the rows where mask is true. The mask must have one entry
// per row.
func (t *Table) Filter(mask []bool) (*Table, error) {
	if len(mask) != t.nrows {
		return nil, errs.InvalidArgument("mask has %d entries for %d rows", len(mask), t.nrows)
	}
	indices := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			indices = append(indices, i)
		}
	}
	return t.Take(indices)
}

// Pick projects the named columns in the given order.
func (t *Table) Pick(names ...string) (*Table, error) {
	if missing := t.MissingKeys(names...); len(missing) > 0 {
		return nil, errs.InvalidArgument("%v is not a key of the table %v", missing, t.Keys())
	}
	cols := make([]*columns.Column, len(names))
	for i, name := range names {
		cols[i] = t.cols[t.index[name]]
	}
	return New(cols...)
}

// Assign replaces columns with the same name in place and appends the
// others. Assigning into a table without columns defines its row count.
func (t *Table) Assign(cols ...*columns.Column) (*Table, error) {
	if len(cols) == 0 {
		return t, nil
	}
	if len(t.cols) == 0 {
		return New(cols...)
	}
	out := append([]*columns.Column(nil), t.cols...)
	index := make(map[string]int, len(out))
	for name, i := range t.index {
		index[name] = i
	}
	for _, col := range cols {
		if col == nil {
			return nil, errs.InvalidArgument("cannot assign a nil column")
		}
		if col.Len() != t.nrows {
			return nil, errs.InvalidArgument("column %q has %d rows, table has %d", col.Name(), col.Len(), t.nrows)
		}
		if i, ok := index[col.Name()]; ok {
			out[i] = col
			continue
		}
		index[col.Name()] = len(out)
		out = append(out, col)
	}
	return New(out...)
}

// Concatenate appends the rows of others below t. Column names and types
// must match; tables without columns are skipped.
func (t *Table) Concatenate(others ...*Table) (*Table, error) {
	parts := make([]*Table, 0, len(others)+1)
	for _, p := range append([]*Table{t}, others...) {
		if p == nil {
			return nil, errs.InvalidArgument("not a Table: nil")
		}
		if p.NumCols() > 0 {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return Empty(), nil
	case 1:
		return parts[0], nil
	}

	head := parts[0]
	for _, p := range parts[1:] {
		if err := head.sameSchema(p); err != nil {
			return nil, err
		}
	}

	cols := make([]*columns.Column, len(head.cols))
	rest := make([]*columns.Column, len(parts)-1)
	for i, c := range head.cols {
		for k, p := range parts[1:] {
			rest[k] = p.cols[i]
		}
		var err error
		if cols[i], err = c.Concatenate(rest...); err != nil {
			return nil, err
		}
	}
	return New(cols...)
}

func (t *Table) sameSchema(o *Table) error {
	if len(t.cols) != len(o.cols) {
		return errs.InvalidArgument("cannot concatenate tables with keys %v and %v", t.Keys(), o.Keys())
	}
	for i, c := range t.cols {
		oc := o.cols[i]
		if c.Name() != oc.Name() || !arrow.TypeEqual(c.DataType(), oc.DataType()) {
			return errs.InvalidArgument("cannot concatenate column %s<%s> with %s<%s>",
				c.Name(), c.DataType(), oc.Name(), oc.DataType())
		}
	}
	return nil
}

// Equal reports whether both tables have the same keys, types and values.
func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.nrows != o.nrows || len(t.cols) != len(o.cols) {
		return false
	}
	for i, c := range t.cols {
		if !c.Equal(o.cols[i]) {
			return false
		}
	}
	return true
}

// Shape describes the table size, e.g. "6 rows x 3 columns".
func (t *Table) Shape() string {
	return fmt.Sprintf("%d %s x %d %s", t.nrows, plural(t.nrows, "row"), len(t.cols), plural(len(t.cols), "column"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// TypeNames returns the data type name of every column, in key order.
func (t *Table) TypeNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = columns.TypeName(c.DataType())
	}
	return names
}
