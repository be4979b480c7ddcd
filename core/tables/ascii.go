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

package tables

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	defaultHead = 5
	defaultTail = 3
)

// Format renders the table with ASCII borders. When the table has more than
// head+tail rows only the first head and the last tail rows are shown,
// separated by an elision row.
func (t *Table) Format(head, tail int) string {
	head, tail = max(head, 0), max(tail, 0)
	if len(t.cols) == 0 {
		return "(empty table)\n"
	}

	rows := make([]int, 0, min(t.nrows, head+tail))
	elided := t.nrows > head+tail
	if elided {
		for i := 0; i < head; i++ {
			rows = append(rows, i)
		}
		for i := t.nrows - tail; i < t.nrows; i++ {
			rows = append(rows, i)
		}
	} else {
		for i := 0; i < t.nrows; i++ {
			rows = append(rows, i)
		}
	}

	// cells[0] is the header, cells[1] the type row.
	ncols := len(t.cols) + 1
	cells := make([][]string, 0, len(rows)+2)
	header := make([]string, ncols)
	types := make([]string, ncols)
	for j, name := range t.TypeNames() {
		header[j+1] = t.cols[j].Name()
		types[j+1] = "<" + name + ">"
	}
	cells = append(cells, header, types)
	for _, i := range rows {
		line := make([]string, ncols)
		line[0] = strconv.Itoa(i)
		for j, c := range t.cols {
			line[j+1], _ = c.GetString(i)
		}
		cells = append(cells, line)
	}

	widths := make([]int, ncols)
	for _, line := range cells {
		for j, s := range line {
			widths[j] = max(widths[j], utf8.RuneCountInString(s))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", t.Shape())
	writeRule(&sb, widths)
	for k, line := range cells {
		if elided && k == head+2 {
			writeElision(&sb, widths)
		}
		writeLine(&sb, widths, line)
		if k == 1 {
			writeRule(&sb, widths)
		}
	}
	if elided && tail == 0 {
		writeElision(&sb, widths)
	}
	writeRule(&sb, widths)
	return sb.String()
}

// String renders the first five and the last three rows.
func (t *Table) String() string {
	return t.Format(defaultHead, defaultTail)
}

func writeLine(sb *strings.Builder, widths []int, line []string) {
	for j, s := range line {
		sb.WriteString("| ")
		sb.WriteString(s)
		sb.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(s)+1))
	}
	sb.WriteString("|\n")
}

func writeRule(sb *strings.Builder, widths []int) {
	for _, w := range widths {
		sb.WriteString("+")
		sb.WriteString(strings.Repeat("-", w+2))
	}
	sb.WriteString("+\n")
}

func writeElision(sb *strings.Builder, widths []int) {
	for _, w := range widths {
		sb.WriteString("| :")
		sb.WriteString(strings.Repeat(" ", w))
	}
	sb.WriteString("|\n")
}
