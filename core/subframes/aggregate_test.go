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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

func values(t *testing.T, tbl *tables.Table, name string) []any {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func TestAggregateMapping(t *testing.T) {
	out, err := byY(t).Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "sum"}})
	require.NoError(t, err)
	require.Equal(t, []string{"y", "sum_x"}, out.Keys())
	require.Equal(t, []any{"A", "B", "C"}, values(t, out, "y"))
	require.Equal(t, []any{int64(3), int64(12), int64(6)}, values(t, out, "sum_x"))
}

func TestAggregateCrossProduct(t *testing.T) {
	out, err := byY(t).Aggregate([]string{"y"}, CrossProduct{
		Columns:   []string{"x"},
		Functions: []string{"count", "sum"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"y", "count_x", "sum_x"}, out.Keys())
	require.Equal(t, []any{int64(2), int64(3), int64(1)}, values(t, out, "count_x"))
	require.Equal(t, []any{int64(3), int64(12), int64(6)}, values(t, out, "sum_x"))
}

func TestAggregateCrossProductOrder(t *testing.T) {
	out, err := byY(t).Aggregate(nil, CrossProduct{
		Columns:   []string{"x", "z"},
		Functions: []string{"count", "max"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"count_x", "count_z", "max_x", "max_z"}, out.Keys())
	require.Equal(t, []any{int64(2), int64(2), int64(1)}, values(t, out, "count_z"))
	require.Equal(t, []any{true, true, false}, values(t, out, "max_z"))
}

func TestAggregateWithoutKeys(t *testing.T) {
	out, err := byY(t).Aggregate(nil, Mapping{
		{Column: "x", Function: "mean"},
		{Column: "y", Function: "min"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mean_x", "min_y"}, out.Keys())
	require.Equal(t, []any{1.5, 4.0, 6.0}, values(t, out, "mean_x"))
	require.Equal(t, []any{"A", "B", "C"}, values(t, out, "min_y"))
}

func TestAggregateInvalidFunction(t *testing.T) {
	sf := byY(t)
	before := testutil.ToFloat64(aggregationsTotal.WithLabelValues("sum"))

	_, err := sf.Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "sum"}, {Column: "x", Function: "median"}})
	require.True(t, errs.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "median")

	_, err = sf.Aggregate([]string{"y"}, CrossProduct{Columns: []string{"x"}, Functions: []string{"sum", "mode"}})
	require.True(t, errs.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "mode")

	require.Equal(t, before, testutil.ToFloat64(aggregationsTotal.WithLabelValues("sum")))

	_, err = sf.Aggregate(nil, nil)
	require.True(t, errs.IsInvalidArgument(err))
}

func TestAggregateWithoutOutputs(t *testing.T) {
	sf := byY(t)
	for _, agg := range []Aggregation{
		Mapping{},
		CrossProduct{Columns: []string{"x"}},
		CrossProduct{Functions: []string{"sum"}},
	} {
		for _, keys := range [][]string{nil, {"y"}} {
			_, err := sf.Aggregate(keys, agg)
			require.True(t, errs.IsInvalidArgument(err), "%#v by %v", agg, keys)
		}
	}
}

func TestAggregateUnknownColumns(t *testing.T) {
	sf := byY(t)
	_, err := sf.Aggregate([]string{"w"}, Mapping{{Column: "x", Function: "sum"}})
	require.True(t, errs.IsInvalidArgument(err))

	_, err = sf.Aggregate([]string{"y"}, Mapping{{Column: "w", Function: "sum"}})
	require.True(t, errs.IsInvalidArgument(err))

	_, err = sf.Aggregate([]string{"y"}, Mapping{{Column: "y", Function: "sum"}})
	require.True(t, errs.IsInvalidArgument(err))
}

func TestAggregateRejectsHeterogeneousKeys(t *testing.T) {
	sf, err := ByIndices(sample(), []int{0, 2}, []int{5})
	require.NoError(t, err)
	_, err = sf.Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "sum"}})
	require.True(t, errs.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "not constant")

	out, err := sf.Aggregate(nil, Mapping{{Column: "x", Function: "sum"}})
	require.NoError(t, err)
	require.Equal(t, []any{int64(4), int64(6)}, values(t, out, "sum_x"))
}

func TestAggregateRejectsEmptyFrameWithKeys(t *testing.T) {
	sf, err := ByIndices(sample(), []int{0}, []int{})
	require.NoError(t, err)
	_, err = sf.Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "count"}})
	require.True(t, errs.IsInvalidArgument(err))

	out, err := sf.Aggregate(nil, Mapping{{Column: "x", Function: "sum"}, {Column: "x", Function: "count"}})
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), nil}, values(t, out, "sum_x"))
	require.Equal(t, []any{int64(1), int64(0)}, values(t, out, "count_x"))
}

func TestAggregateEmptyCollection(t *testing.T) {
	out, err := Empty().Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "sum"}})
	require.NoError(t, err)
	require.Same(t, tables.Empty(), out)

	_, err = Empty().Aggregate(nil, Mapping{{Column: "x", Function: "median"}})
	require.True(t, errs.IsInvalidArgument(err))
}

func TestAggregateNullsAndFloats(t *testing.T) {
	tbl := tables.MustNew(
		columns.MustFromValues("k", []string{"a", "a", "b", "b"}),
		columns.MustFromValues("v", []any{1.0, nil, nil, nil}),
	)
	sf, err := ByFilters(tbl, []bool{true, true, false, false}, []bool{false, false, true, true})
	require.NoError(t, err)

	out, err := sf.Aggregate([]string{"k"}, CrossProduct{Columns: []string{"v"}, Functions: []string{"sum", "stddev"}})
	require.NoError(t, err)
	require.Equal(t, []any{1.0, nil}, values(t, out, "sum_v"))
	require.Equal(t, []any{0.0, nil}, values(t, out, "stddev_v"))
}

func TestAggregateCountsMetric(t *testing.T) {
	before := testutil.ToFloat64(aggregationsTotal.WithLabelValues("variance"))
	_, err := byY(t).Aggregate([]string{"y"}, Mapping{{Column: "x", Function: "variance"}})
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(aggregationsTotal.WithLabelValues("variance")))
}

func TestAggregateAfterMap(t *testing.T) {
	mapped, err := byY(t).Assign(func(t *tables.Table) ([]*columns.Column, error) {
		c, err := t.Column("x")
		if err != nil {
			return nil, err
		}
		return []*columns.Column{c.Rename("x2")}, nil
	})
	require.NoError(t, err)
	out, err := mapped.Aggregate([]string{"y"}, Mapping{{Column: "x2", Function: "max"}})
	require.NoError(t, err)
	require.Equal(t, []any{int64(2), int64(5), int64(6)}, values(t, out, "max_x2"))
}
