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

// Package grouping partitions a table by the values of one or more key
// columns.
//
// Terminology:
// * the columns whose values define the partition are called group keys
// * each distinct combination of key values is a group
// * the remaining columns are called value columns; the group shortcuts
// summarize them per group
package grouping

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/google/subframes/core/aggregates"
	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/subframes"
	"github.com/google/subframes/core/tables"
)

var (
	partitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "subframes",
		Name:      "partitions_total",
		Help:      "Total number of tables partitioned by group keys.",
	})
	partitionGroups = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "subframes",
		Name:      "partition_groups",
		Help:      "Number of groups produced by a partition.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
	})
)

// Group is a table partitioned by its group keys. It is immutable once built.
type Group struct {
	table   *tables.Table
	keys    []string
	indices [][]int  // row positions per group, ascending
	filters [][]bool // one mask per group, disjoint and exhaustive
}

// New partitions table by keys. Groups are ordered by the first row holding
// their key values.
func New(table *tables.Table, keys ...string) (*Group, error) {
	if table == nil {
		return nil, errs.InvalidArgument("not a Table: nil")
	}
	if len(keys) == 0 {
		return nil, errs.InvalidArgument("group keys are empty")
	}
	if missing := table.MissingKeys(keys...); len(missing) > 0 {
		return nil, errs.InvalidArgument("%v is not a key of the table %v", missing, table.Keys())
	}

	keyCols := make([]*columns.Column, len(keys))
	for i, k := range keys {
		keyCols[i], _ = table.Column(k)
	}

	g := &Group{
		table:   table,
		keys:    append([]string(nil), keys...),
		indices: partition(keyCols, table.NumRows()),
	}
	g.filters = make([][]bool, len(g.indices))
	for k, rows := range g.indices {
		mask := make([]bool, table.NumRows())
		for _, i := range rows {
			mask[i] = true
		}
		g.filters[k] = mask
	}

	partitionsTotal.Inc()
	partitionGroups.Observe(float64(len(g.indices)))
	return g, nil
}

type bucket struct {
	key  []byte // encoded key tuple
	rows []int
}

// partition scans the rows once and collects the positions of each distinct
// key tuple in encounter order.
func partition(keyCols []*columns.Column, nrows int) [][]int {
	var (
		digest  = xxhash.New()
		buckets []*bucket
		byHash  = make(map[uint64][]int) // digest -> positions in buckets
		buf     []byte
	)

	for row := 0; row < nrows; row++ {
		buf = buf[:0]
		for i, c := range keyCols {
			if i > 0 {
				buf = append(buf, 0) // separator
			}
			buf = appendKey(buf, c.Value(row))
		}
		digest.Reset()
		_, _ = digest.Write(buf)
		h := digest.Sum64()

		found := false
		for _, pos := range byHash[h] {
			// different tuples may share a digest
			if string(buckets[pos].key) == string(buf) {
				buckets[pos].rows = append(buckets[pos].rows, row)
				found = true
				break
			}
		}
		if !found {
			byHash[h] = append(byHash[h], len(buckets))
			buckets = append(buckets, &bucket{key: append([]byte(nil), buf...), rows: []int{row}})
		}
	}

	out := make([][]int, len(buckets))
	for i, b := range buckets {
		out[i] = b.rows
	}
	return out
}

const (
	tagNull byte = iota
	tagInt
	tagFloat
	tagString
	tagBool
	tagOther
)

// appendKey encodes v with a type tag so that nulls, empty strings and equal
// looking values of different types stay distinct.
func appendKey(buf []byte, v any) []byte {
	switch v := v.(type) {
	case nil:
		return append(buf, tagNull)
	case int64:
		return binary.LittleEndian.AppendUint64(append(buf, tagInt), uint64(v))
	case float64:
		switch {
		case math.IsNaN(v):
			v = math.NaN()
		case v == 0:
			// -0 and +0 compare equal
			v = 0
		}
		return binary.LittleEndian.AppendUint64(append(buf, tagFloat), math.Float64bits(v))
	case string:
		buf = binary.AppendUvarint(append(buf, tagString), uint64(len(v)))
		return append(buf, v...)
	case bool:
		if v {
			return append(buf, tagBool, 1)
		}
		return append(buf, tagBool, 0)
	}
	s := fmt.Sprint(v)
	buf = binary.AppendUvarint(append(buf, tagOther), uint64(len(s)))
	return append(buf, s...)
}

func (g *Group) Table() *tables.Table {
	return g.table
}

func (g *Group) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Filters returns one row mask per group, in group order.
func (g *Group) Filters() [][]bool {
	return g.filters
}

// Indices returns the row positions of each group, in group order.
func (g *Group) Indices() [][]int {
	return g.indices
}

// Size returns the number of groups.
func (g *Group) Size() int {
	return len(g.indices)
}

// SubFrames returns the groups as a collection of sub-frames.
func (g *Group) SubFrames() (*subframes.SubFrames, error) {
	return subframes.ByGroup(g)
}

// Count returns the number of non-null values of each value column per group.
func (g *Group) Count(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Count, valueKeys)
}

func (g *Group) Sum(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Sum, valueKeys)
}

func (g *Group) Product(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Product, valueKeys)
}

func (g *Group) Mean(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Mean, valueKeys)
}

func (g *Group) Min(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Min, valueKeys)
}

func (g *Group) Max(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Max, valueKeys)
}

// StdDev returns the population standard deviation per group.
func (g *Group) StdDev(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.StdDev, valueKeys)
}

// Variance returns the population variance per group.
func (g *Group) Variance(valueKeys ...string) (*tables.Table, error) {
	return g.by(aggregates.Variance, valueKeys)
}

// by summarizes valueKeys with fn. Without value keys every non-key column
// fn is defined for is summarized.
func (g *Group) by(fn aggregates.Function, valueKeys []string) (*tables.Table, error) {
	if missing := g.table.MissingKeys(valueKeys...); len(missing) > 0 {
		return nil, errs.InvalidArgument("%v is not a key of the table %v", missing, g.table.Keys())
	}
	if len(valueKeys) == 0 {
		valueKeys = g.defaultValueKeys(fn)
		if len(valueKeys) == 0 {
			return nil, errs.InvalidArgument("no column of %v can be summarized by %s", g.table.Keys(), fn)
		}
	}
	sf, err := g.SubFrames()
	if err != nil {
		return nil, err
	}
	return sf.Aggregate(g.keys, subframes.CrossProduct{
		Columns:   valueKeys,
		Functions: []string{fn.String()},
	})
}

func (g *Group) defaultValueKeys(fn aggregates.Function) []string {
	isKey := make(map[string]bool, len(g.keys))
	for _, k := range g.keys {
		isKey[k] = true
	}
	var out []string
	for _, c := range g.table.Columns() {
		if isKey[c.Name()] {
			continue
		}
		if _, err := aggregates.ResultType(fn, c.DataType()); err == nil {
			out = append(out, c.Name())
		}
	}
	return out
}

// String lists the distinct values of every group key with their row counts.
func (g *Group) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Group by %v: %d groups\n", g.keys, len(g.indices))
	for _, k := range g.keys {
		c, _ := g.table.Column(k)
		parts := make([]string, 0)
		for _, e := range c.Tally() {
			parts = append(parts, fmt.Sprintf("%s=>%d", columns.FormatValue(e.Value), e.Count))
		}
		fmt.Fprintf(&sb, "  %s: {%s}\n", k, strings.Join(parts, ", "))
	}
	return sb.String()
}
