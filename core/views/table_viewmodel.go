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

// Package views turns tables and sub-frame collections into view models the
// HTML templates consume.
package views

import (
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/subframes/core/query"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/core/tables"
)

// TableViewModel contains the data from the table formatted for template consumption
type TableViewModel struct {
	Title   string
	Shape   string   // e.g. "6 rows x 3 columns"
	Headers []string // Column names
	Types   []string // Column type names, same order as Headers
	Rows    []RowViewModel

	TotalRows     int  // Total number of rows in the table
	DisplayedRows int  // Number of rows actually displayed
	HasMoreRows   bool // True if rows were left out
}

// RowViewModel is one displayed row. An elision row stands for the rows
// left out between head and tail.
type RowViewModel struct {
	Index     string
	Cells     []string
	IsElision bool
}

// SubFramesViewModel describes a sub-frames page.
type SubFramesViewModel struct {
	Title      string
	FrameCount int
	Sizes      string // comma separated, truncated to the limit
	Baseframe  string // shape of the baseframe
	Frames     []FrameViewModel
	More       int // sub-frames not displayed

	// Set by the page builder
	Columns     []ColumnToggle
	Aggregation string
	Summary     *TableViewModel
	Error       string
	MoreURL     safehtml.URL
	CurrentURL  safehtml.URL
}

// FrameViewModel is one displayed sub-frame.
type FrameViewModel struct {
	Index int
	Table TableViewModel
}

// ColumnToggle links to the same page with a column added to or removed
// from the grouping.
type ColumnToggle struct {
	Name      string
	IsGrouped bool
	ToggleURL safehtml.URL
}

// BuildTableViewModel shows the first head and the last tail rows of t.
func BuildTableViewModel(title string, t *tables.Table, head, tail int) TableViewModel {
	vm := TableViewModel{
		Title:     title,
		Shape:     t.Shape(),
		Headers:   t.Keys(),
		Types:     t.TypeNames(),
		TotalRows: t.NumRows(),
	}

	n := t.NumRows()
	rows := make([]int, 0, n)
	if n > head+tail {
		for i := 0; i < head; i++ {
			rows = append(rows, i)
		}
		for i := n - tail; i < n; i++ {
			rows = append(rows, i)
		}
		vm.HasMoreRows = true
	} else {
		for i := 0; i < n; i++ {
			rows = append(rows, i)
		}
	}

	cols := t.Columns()
	for k, i := range rows {
		if vm.HasMoreRows && k == head {
			vm.Rows = append(vm.Rows, RowViewModel{Index: ":", IsElision: true})
		}
		row := RowViewModel{Index: strconv.Itoa(i), Cells: make([]string, len(cols))}
		for j, c := range cols {
			row.Cells[j], _ = c.GetString(i)
		}
		vm.Rows = append(vm.Rows, row)
	}
	if vm.HasMoreRows && tail == 0 {
		vm.Rows = append(vm.Rows, RowViewModel{Index: ":", IsElision: true})
	}
	vm.DisplayedRows = len(rows)
	return vm
}

// BuildSubFramesViewModel shows the first limit sub-frames, each with its
// first and last two rows.
func BuildSubFramesViewModel(title string, sf *subframes.SubFrames, limit int) SubFramesViewModel {
	limit = max(limit, 0)
	n := sf.Size()
	vm := SubFramesViewModel{
		Title:      title,
		FrameCount: n,
		Baseframe:  sf.Baseframe().Shape(),
		More:       max(n-limit, 0),
	}

	sizes := sf.Sizes()
	shown := make([]string, 0, min(n, limit)+1)
	for _, s := range sizes[:min(n, limit)] {
		shown = append(shown, strconv.Itoa(s))
	}
	if vm.More > 0 {
		shown = append(shown, "...")
	}
	vm.Sizes = strings.Join(shown, ", ")

	for i, f := range sf.All() {
		if i >= limit {
			break
		}
		vm.Frames = append(vm.Frames, FrameViewModel{
			Index: i,
			Table: BuildTableViewModel("", f, 2, 2),
		})
	}
	return vm
}

// BuildColumnToggles lists the columns of a table with links toggling their
// grouping in q.
func BuildColumnToggles(q *query.Query, keys []string) []ColumnToggle {
	toggles := make([]ColumnToggle, len(keys))
	for i, k := range keys {
		toggles[i] = ColumnToggle{
			Name:      k,
			IsGrouped: q.IsColumnGrouped(k),
			ToggleURL: q.WithGroupedColumnToggled(k),
		}
	}
	return toggles
}
