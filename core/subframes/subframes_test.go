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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sample() *tables.Table {
	return tables.MustNew(
		columns.MustFromValues("x", []int{1, 2, 3, 4, 5, 6}),
		columns.MustFromValues("y", []string{"A", "A", "B", "B", "B", "C"}),
		columns.MustFromValues("z", []any{false, true, false, nil, true, false}),
	)
}

func byY(t *testing.T) *SubFrames {
	t.Helper()
	sf, err := ByIndices(sample(), []int{0, 1}, []int{2, 3, 4}, []int{5})
	require.NoError(t, err)
	return sf
}

func xs(t *testing.T, tbl *tables.Table) []any {
	t.Helper()
	c, err := tbl.Column("x")
	require.NoError(t, err)
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func TestByIndices(t *testing.T) {
	sf := byY(t)
	require.Equal(t, 3, sf.Size())
	require.Equal(t, []int{2, 3, 1}, sf.Sizes())
	require.Equal(t, []int{0, 2, 5}, sf.Offsets())
	require.True(t, sf.Baseframe().Equal(sample()))

	f, err := sf.Frame(-1)
	require.NoError(t, err)
	require.Equal(t, []any{int64(6)}, xs(t, f))

	_, err = sf.Frame(3)
	require.True(t, errs.IsOutOfRange(err))
}

func TestByFilters(t *testing.T) {
	sf, err := ByFilters(sample(),
		[]bool{true, false, true, false, true, false},
		[]bool{false, true, false, true, false, true},
	)
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, sf.Sizes())

	f, err := sf.Frame(1)
	require.NoError(t, err)
	require.Equal(t, []any{int64(2), int64(4), int64(6)}, xs(t, f))
	require.Equal(t, []any{int64(1), int64(3), int64(5), int64(2), int64(4), int64(6)}, xs(t, sf.Baseframe()))
}

func TestSelectorValidation(t *testing.T) {
	_, err := ByIndices(sample(), []int{0, 6})
	require.True(t, errs.IsOutOfRange(err))

	_, err = ByIndices(sample(), []int{-7})
	require.True(t, errs.IsOutOfRange(err))

	_, err = ByFilters(sample(), []bool{true})
	require.True(t, errs.IsInvalidArgument(err))

	_, err = New(sample(), []Selector{nil}, nil)
	require.True(t, errs.IsInvalidArgument(err))

	_, err = New(nil, []Selector{IndexList{0}}, nil)
	require.True(t, errs.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "not a Table")
}

func TestSelectorOf(t *testing.T) {
	for _, v := range []any{
		[]int{1}, []int64{1}, []int32{1}, []uint32{1},
		columns.MustFromValues("i", []int{1}),
	} {
		s, err := SelectorOf(v)
		require.NoError(t, err)
		require.Equal(t, IndexList{1}, s)
	}
	for _, v := range []any{[]bool{true}, columns.MustFromValues("b", []bool{true})} {
		s, err := SelectorOf(v)
		require.NoError(t, err)
		require.Equal(t, RowMask{true}, s)
	}
	for _, v := range []any{"0", []float64{1}, columns.MustFromValues("s", []string{"a"}), nil} {
		_, err := SelectorOf(v)
		require.True(t, errs.IsInvalidArgument(err), "%v", v)
		require.Contains(t, err.Error(), "illegal type")
	}
}

func TestEmptyConstruction(t *testing.T) {
	empty := tables.MustNew(columns.NewInt64("x", nil, nil))
	for name, build := range map[string]func() (*SubFrames, error){
		"empty base":   func() (*SubFrames, error) { return ByIndices(empty, []int{}) },
		"no selectors": func() (*SubFrames, error) { return New(sample(), nil, nil) },
		"no tables":    func() (*SubFrames, error) { return ByTables() },
		"empty yielded": func() (*SubFrames, error) {
			return FromGenerator(sample(), func(*tables.Table) ([]Selector, error) { return nil, nil })
		},
	} {
		t.Run(name, func(t *testing.T) {
			sf, err := build()
			require.NoError(t, err)
			require.True(t, sf.IsEmpty())
			require.Zero(t, sf.Size())
			require.Empty(t, sf.Sizes())
			require.Same(t, tables.Empty(), sf.Baseframe())
			require.False(t, sf.IsUniversal())
		})
	}
}

func TestGenerator(t *testing.T) {
	calls := 0
	gen := func(base *tables.Table) ([]Selector, error) {
		calls++
		return Selectors([]int{0, 1}, []bool{false, false, true, true, true, true})
	}
	sf, err := New(sample(), nil, gen)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, []int{2, 4}, sf.Sizes())
	sf.Each(func(*tables.Table) {})
	require.Equal(t, 1, calls)

	_, err = New(sample(), []Selector{IndexList{0}}, gen)
	require.True(t, errs.IsInvalidArgument(err))
	require.Equal(t, 1, calls)

	_, err = FromGenerator(sample(), func(*tables.Table) ([]Selector, error) {
		return Selectors("abc")
	})
	require.True(t, errs.IsInvalidArgument(err))
}

func TestLazyMaterialization(t *testing.T) {
	before := testutil.ToFloat64(framesMaterialized)
	sf := byY(t)
	require.Equal(t, 3, sf.Size())
	require.False(t, sf.IsEmpty())
	require.Equal(t, before, testutil.ToFloat64(framesMaterialized))

	for i, f := range sf.All() {
		require.Equal(t, 0, i)
		require.Equal(t, 2, f.NumRows())
		break
	}
	require.Equal(t, before+1, testutil.ToFloat64(framesMaterialized))

	first, err := sf.Frame(0)
	require.NoError(t, err)
	again, err := sf.Frame(0)
	require.NoError(t, err)
	require.Same(t, first, again)
	require.Equal(t, before+1, testutil.ToFloat64(framesMaterialized))

	sf.Baseframe()
	require.Equal(t, before+3, testutil.ToFloat64(framesMaterialized))
	require.Same(t, sf.Baseframe(), sf.Concatenate())
}

func TestEachReturnsCollection(t *testing.T) {
	sf := byY(t)
	var sizes []int
	got := sf.Each(func(f *tables.Table) { sizes = append(sizes, f.NumRows()) })
	require.Same(t, sf, got)
	require.Equal(t, []int{2, 3, 1}, sizes)
}

func TestSizeInvariants(t *testing.T) {
	sf := byY(t)
	sizes, offsets := sf.Sizes(), sf.Offsets()
	require.Len(t, sizes, sf.Size())
	require.Len(t, offsets, sf.Size())
	require.Equal(t, 0, offsets[0])
	total := 0
	for i := range sizes {
		require.Equal(t, total, offsets[i])
		total += sizes[i]
	}
	require.Equal(t, total, sf.Baseframe().NumRows())
}

func TestIsUniversal(t *testing.T) {
	whole, err := ByIndices(sample(), []int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.True(t, whole.IsUniversal())

	mask, err := ByFilters(sample(), []bool{true, true, true, true, true, true})
	require.NoError(t, err)
	require.True(t, mask.IsUniversal())

	subset, err := ByIndices(sample(), []int{0, 1})
	require.NoError(t, err)
	require.False(t, subset.IsUniversal())

	require.False(t, byY(t).IsUniversal())

	single, err := ByTables(sample())
	require.NoError(t, err)
	require.True(t, single.IsUniversal())
}

func TestByTables(t *testing.T) {
	tbl := sample()
	sf, err := ByTables(tbl.Head(2), tbl.Tail(4))
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, sf.Sizes())
	require.True(t, sf.Baseframe().Equal(tbl))

	other := tables.MustNew(columns.MustFromValues("x", []string{"a"}))
	_, err = ByTables(tbl, other)
	require.True(t, errs.IsInvalidArgument(err))

	_, err = ByTables(tbl, nil)
	require.True(t, errs.IsInvalidArgument(err))
}

type partition struct {
	table   *tables.Table
	filters [][]bool
}

func (p partition) Table() *tables.Table { return p.table }
func (p partition) Filters() [][]bool    { return p.filters }

func TestByGroup(t *testing.T) {
	sf, err := ByGroup(partition{
		table:   sample(),
		filters: [][]bool{{true, true, false, false, false, false}, {false, false, true, true, true, true}},
	})
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, sf.Sizes())

	_, err = ByGroup(nil)
	require.True(t, errs.IsInvalidArgument(err))
}

func TestFormat(t *testing.T) {
	sf := byY(t)
	out := sf.String()
	require.Contains(t, out, "SubFrames: 3 frames [2, 3, 1] in sizes.\n")
	require.Contains(t, out, "baseframe: 6 rows x 3 columns\n")
	require.Equal(t, 3, strings.Count(out, "---\n"))

	out = sf.Format(1)
	require.Contains(t, out, "[2, ...]")
	require.Contains(t, out, "+ 2 more frames.\n")

	require.Contains(t, Empty().String(), "SubFrames: 0 frames [] in sizes.")
}
