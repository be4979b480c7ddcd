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

package subframes

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/google/subframes/core/aggregates"
	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/logging"
	"github.com/google/subframes/core/tables"
)

var aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "subframes",
	Name:      "aggregations_total",
	Help:      "Total number of aggregated output columns by function.",
}, []string{"function"})

// Aggregation describes the output columns of Aggregate. It is either a
// Mapping or a CrossProduct.
type Aggregation interface {
	outputs() ([]output, error)
}

// Pair applies Function to Column.
type Pair struct {
	Column   string
	Function string
}

// Mapping produces one output column per pair, in order.
type Mapping []Pair

// CrossProduct produces one output column per function and column,
// functions in the outer loop.
type CrossProduct struct {
	Columns   []string
	Functions []string
}

type output struct {
	name   string // "<function>_<column>"
	column string
	fn     aggregates.Function
}

func newOutput(column string, fn aggregates.Function) output {
	return output{name: fn.String() + "_" + column, column: column, fn: fn}
}

func (m Mapping) outputs() ([]output, error) {
	if len(m) == 0 {
		return nil, errs.InvalidArgument("invalid aggregation: empty mapping")
	}
	out := make([]output, len(m))
	for i, p := range m {
		fn, err := aggregates.Parse(p.Function)
		if err != nil {
			return nil, err
		}
		out[i] = newOutput(p.Column, fn)
	}
	return out, nil
}

func (c CrossProduct) outputs() ([]output, error) {
	if len(c.Columns) == 0 || len(c.Functions) == 0 {
		return nil, errs.InvalidArgument("invalid aggregation %s: needs columns and functions", c)
	}
	fns := make([]aggregates.Function, len(c.Functions))
	for i, name := range c.Functions {
		fn, err := aggregates.Parse(name)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	out := make([]output, 0, len(fns)*len(c.Columns))
	for _, fn := range fns {
		for _, col := range c.Columns {
			out = append(out, newOutput(col, fn))
		}
	}
	return out, nil
}

func (m Mapping) String() string {
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = p.Column + "=" + p.Function
	}
	return strings.Join(parts, ",")
}

func (c CrossProduct) String() string {
	return fmt.Sprintf("[%s]*[%s]", strings.Join(c.Columns, ","), strings.Join(c.Functions, ","))
}

// Aggregate folds every sub-frame into one row. The result holds the group
// keys, taken from the first row of each sub-frame, followed by one column
// per output of agg named "<function>_<column>".
//
// Every function name is checked before anything is computed. With group
// keys, every sub-frame must be non-empty and hold a single value per key.
func (sf *SubFrames) Aggregate(groupKeys []string, agg Aggregation) (*tables.Table, error) {
	if agg == nil {
		return nil, errs.InvalidArgument("invalid aggregation: nil")
	}
	outs, err := agg.outputs()
	if err != nil {
		return nil, err
	}
	if sf.IsEmpty() {
		return tables.Empty(), nil
	}

	base := sf.Baseframe()
	if err := sf.validate(base, groupKeys, outs); err != nil {
		return nil, err
	}

	level.Debug(logging.Logger).Log("msg", "aggregating sub-frames", "frames", sf.Size(), "keys", strings.Join(groupKeys, ","), "outputs", len(outs))

	frames := sf.Frames()
	cols := make([]*columns.Column, len(outs))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, o := range outs {
		g.Go(func() error {
			c, err := aggregateColumn(frames, base, o)
			if err != nil {
				return err
			}
			cols[i] = c
			aggregationsTotal.WithLabelValues(o.fn.String()).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(groupKeys) == 0 {
		return tables.New(cols...)
	}
	keys, err := base.Pick(groupKeys...)
	if err != nil {
		return nil, err
	}
	if keys, err = keys.Slice(sf.Offsets()); err != nil {
		return nil, err
	}
	return keys.Assign(cols...)
}

func aggregateColumn(frames []*tables.Table, base *tables.Table, o output) (*columns.Column, error) {
	src, err := base.Column(o.column)
	if err != nil {
		return nil, err
	}
	b, err := aggregates.NewResultBuilder(o.name, o.fn, src.DataType())
	if err != nil {
		return nil, err
	}
	for _, f := range frames {
		c, err := f.Column(o.column)
		if err != nil {
			return nil, err
		}
		if err := b.Append(c); err != nil {
			return nil, err
		}
	}
	return b.Column()
}

// validate checks the aggregation against the baseframe before any output
// column is computed.
func (sf *SubFrames) validate(base *tables.Table, groupKeys []string, outs []output) error {
	if missing := base.MissingKeys(groupKeys...); len(missing) > 0 {
		return errs.InvalidArgument("group keys %v are not keys of the baseframe %v", missing, base.Keys())
	}
	seen := make(map[string]bool, len(outs))
	for _, o := range outs {
		c, err := base.Column(o.column)
		if err != nil {
			return err
		}
		if _, err := aggregates.ResultType(o.fn, c.DataType()); err != nil {
			return err
		}
		if seen[o.name] {
			return errs.InvalidArgument("duplicate aggregation %q", o.name)
		}
		seen[o.name] = true
	}
	if len(groupKeys) == 0 {
		return nil
	}

	for i, f := range sf.Frames() {
		if f.IsEmpty() {
			return errs.InvalidArgument("sub-frame %d is empty and has no group key values", i)
		}
		for _, k := range groupKeys {
			c, _ := f.Column(k)
			for row := 1; row < c.Len(); row++ {
				if columns.CompareAt(c, 0, row) != 0 {
					return errs.InvalidArgument("group key %q is not constant in sub-frame %d: %s and %s",
						k, i, columns.FormatValue(c.Value(0)), columns.FormatValue(c.Value(row)))
				}
			}
		}
	}
	return nil
}
