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

// Package subframes implements an ordered, lazily materialized collection of
// sub-frames derived from one base table, together with the combinators and
// the aggregation that fold the collection back into a single table.
//
// Sub-frames are built on first access and cached; the concatenation of all
// sub-frames (the baseframe), their sizes and offsets are computed at most
// once. A SubFrames value never changes after construction and can be read
// from several goroutines.
package subframes

import (
	"iter"
	"sync"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/tables"
)

var framesMaterialized = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "subframes",
	Name:      "frames_materialized_total",
	Help:      "Total number of sub-frames built from their selectors.",
})

// Generator derives the selectors of a collection from its base table. It is
// called exactly once, during construction.
type Generator func(base *tables.Table) ([]Selector, error)

// SubFrames is an ordered collection of sub-frames of one base table.
type SubFrames struct {
	base  *tables.Table
	cells []*cell

	baseOnce  sync.Once
	baseframe *tables.Table

	sizesOnce sync.Once
	sizes     []int
	offsets   []int
}

// cell is one sub-frame, built the first time it is read.
type cell struct {
	once  sync.Once
	sel   resolved
	frame *tables.Table
}

func (c *cell) get(base *tables.Table) *tables.Table {
	c.once.Do(func() {
		if c.sel.frame == nil {
			framesMaterialized.Inc()
		}
		c.frame = c.sel.materialize(base)
	})
	return c.frame
}

// Empty returns the canonical empty collection: no sub-frames and an empty
// baseframe.
func Empty() *SubFrames {
	sf := &SubFrames{base: tables.Empty()}
	sf.baseOnce.Do(func() { sf.baseframe = tables.Empty() })
	return sf
}

// New builds a collection from base and either selectors or a generator,
// never both. An empty base table or no selectors yield Empty(). Selectors
// are validated here, so reading the collection later cannot fail.
func New(base *tables.Table, selectors []Selector, generator Generator) (*SubFrames, error) {
	if base == nil {
		return nil, errs.InvalidArgument("not a Table: nil")
	}
	if generator != nil {
		if selectors != nil {
			return nil, errs.InvalidArgument("must not specify both selectors and a generator")
		}
		var err error
		if selectors, err = generator(base); err != nil {
			return nil, err
		}
	}
	if base.IsEmpty() || len(selectors) == 0 {
		return Empty(), nil
	}

	cells := make([]*cell, len(selectors))
	for i, s := range selectors {
		if s == nil {
			return nil, errs.InvalidArgument("selector %d is nil", i)
		}
		r, err := resolve(base, s)
		if err != nil {
			return nil, err
		}
		cells[i] = &cell{sel: r}
	}
	level.Debug(logging.Logger).Log("msg", "built sub-frames", "frames", len(cells), "base_rows", base.NumRows())
	return &SubFrames{base: base, cells: cells}, nil
}

// FromGenerator builds a collection from the selectors gen derives from base.
func FromGenerator(base *tables.Table, gen Generator) (*SubFrames, error) {
	if gen == nil {
		return nil, errs.InvalidArgument("generator is nil")
	}
	return New(base, nil, gen)
}

// ByIndices builds one sub-frame per index list.
func ByIndices(base *tables.Table, lists ...[]int) (*SubFrames, error) {
	selectors := make([]Selector, len(lists))
	for i, l := range lists {
		selectors[i] = IndexList(l)
	}
	return New(base, selectors, nil)
}

// ByFilters builds one sub-frame per row mask.
func ByFilters(base *tables.Table, masks ...[]bool) (*SubFrames, error) {
	selectors := make([]Selector, len(masks))
	for i, m := range masks {
		selectors[i] = RowMask(m)
	}
	return New(base, selectors, nil)
}

// Partition is a table split into disjoint row masks.
type Partition interface {
	Table() *tables.Table
	Filters() [][]bool
}

// ByGroup builds one sub-frame per group of p.
func ByGroup(p Partition) (*SubFrames, error) {
	if p == nil {
		return nil, errs.InvalidArgument("partition is nil")
	}
	return ByFilters(p.Table(), p.Filters()...)
}

// ByTables builds a collection from ready-made sub-frames. The frames must
// share one schema; their concatenation becomes the baseframe right away.
func ByTables(frames ...*tables.Table) (*SubFrames, error) {
	return byTables(nil, frames...)
}

// byTables is ByTables with the base table of the collection the frames
// were selected from. A nil base makes the baseframe the base.
func byTables(base *tables.Table, frames ...*tables.Table) (*SubFrames, error) {
	if len(frames) == 0 {
		return Empty(), nil
	}
	for i, f := range frames {
		if f == nil {
			return nil, errs.InvalidArgument("not a Table: frame %d is nil", i)
		}
	}
	baseframe, err := frames[0].Concatenate(frames[1:]...)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = baseframe
	}

	sf := &SubFrames{base: base, cells: make([]*cell, len(frames))}
	for i, f := range frames {
		sf.cells[i] = &cell{sel: resolved{frame: f}}
	}
	sf.baseOnce.Do(func() { sf.baseframe = baseframe })
	return sf, nil
}

// Size returns the number of sub-frames without building any of them.
func (sf *SubFrames) Size() int {
	return len(sf.cells)
}

// IsEmpty reports whether the collection has no sub-frames.
func (sf *SubFrames) IsEmpty() bool {
	return len(sf.cells) == 0
}

// Frame returns sub-frame i, building it on first access. Negative positions
// count from the end.
func (sf *SubFrames) Frame(i int) (*tables.Table, error) {
	n := len(sf.cells)
	if i < -n || i >= n {
		return nil, errs.OutOfRange("frame %d out of range for %d frames", i, n)
	}
	if i < 0 {
		i += n
	}
	return sf.cells[i].get(sf.base), nil
}

// Each calls fn with every sub-frame in order and returns sf.
func (sf *SubFrames) Each(fn func(*tables.Table)) *SubFrames {
	for _, c := range sf.cells {
		fn(c.get(sf.base))
	}
	return sf
}

// All returns the sub-frames as a lazy sequence of Size() elements. Frames
// are built as the sequence is drawn.
func (sf *SubFrames) All() iter.Seq2[int, *tables.Table] {
	return func(yield func(int, *tables.Table) bool) {
		for i, c := range sf.cells {
			if !yield(i, c.get(sf.base)) {
				return
			}
		}
	}
}

// Frames returns every sub-frame, building those not built yet.
func (sf *SubFrames) Frames() []*tables.Table {
	out := make([]*tables.Table, len(sf.cells))
	for i, c := range sf.cells {
		out[i] = c.get(sf.base)
	}
	return out
}

// Baseframe returns the concatenation of all sub-frames in order.
func (sf *SubFrames) Baseframe() *tables.Table {
	sf.baseOnce.Do(func() {
		frames := sf.Frames()
		t, err := frames[0].Concatenate(frames[1:]...)
		if err != nil {
			// every frame is a selection of the same base table
			panic("subframes: sub-frames do not share a schema: " + err.Error())
		}
		sf.baseframe = t
	})
	return sf.baseframe
}

// Concatenate is an alias for Baseframe.
func (sf *SubFrames) Concatenate() *tables.Table {
	return sf.Baseframe()
}

func (sf *SubFrames) computeSizes() {
	sf.sizesOnce.Do(func() {
		sf.sizes = make([]int, len(sf.cells))
		sf.offsets = make([]int, len(sf.cells))
		sum := 0
		for i, f := range sf.Frames() {
			sf.sizes[i] = f.NumRows()
			sf.offsets[i] = sum
			sum += sf.sizes[i]
		}
	})
}

// Sizes returns the row count of every sub-frame.
func (sf *SubFrames) Sizes() []int {
	sf.computeSizes()
	return append([]int(nil), sf.sizes...)
}

// Offsets returns the position of the first row of every sub-frame within
// the baseframe.
func (sf *SubFrames) Offsets() []int {
	sf.computeSizes()
	return append([]int(nil), sf.offsets...)
}

// Base returns the table the selectors were resolved against. For a
// collection of ready-made frames it is the baseframe.
func (sf *SubFrames) Base() *tables.Table {
	return sf.base
}

// IsUniversal reports whether the collection is a single sub-frame holding
// the whole base table, i.e. no real partitioning happened. With a single
// sub-frame the baseframe is that sub-frame, so the comparison is made
// against the base table.
func (sf *SubFrames) IsUniversal() bool {
	if len(sf.cells) != 1 {
		return false
	}
	f, _ := sf.Frame(0)
	return f.Equal(sf.base)
}
