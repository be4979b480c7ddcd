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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/google/subframes/core/columns"
	"github.com/google/subframes/core/errs"
	"github.com/google/subframes/core/tables"
)

func TestMapIdentity(t *testing.T) {
	sf := byY(t)
	mapped, err := sf.Map(func(t *tables.Table) (*tables.Table, error) { return t, nil })
	require.NoError(t, err)
	require.NotSame(t, sf, mapped)
	require.True(t, mapped.Baseframe().Equal(sf.Baseframe()))
	require.Equal(t, sf.Sizes(), mapped.Sizes())
}

func TestMapTransforms(t *testing.T) {
	mapped, err := byY(t).Map(func(t *tables.Table) (*tables.Table, error) {
		return t.Head(1), nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1}, mapped.Sizes())
	require.Equal(t, []any{int64(1), int64(3), int64(6)}, xs(t, mapped.Baseframe()))
}

func TestMapError(t *testing.T) {
	boom := errors.New("boom")
	sf := byY(t)
	calls := 0
	_, err := sf.Map(func(t *tables.Table) (*tables.Table, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return t, nil
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
	require.Equal(t, 3, sf.Size())

	_, err = sf.Map(func(*tables.Table) (*tables.Table, error) { return nil, nil })
	require.True(t, errs.IsInvalidArgument(err))

	_, err = sf.Map(nil)
	require.True(t, errs.IsInvalidArgument(err))
}

func TestSelectAndReject(t *testing.T) {
	sf := byY(t)

	all, err := sf.Select(func(*tables.Table) bool { return true })
	require.NoError(t, err)
	require.Equal(t, sf.Size(), all.Size())
	for i, f := range all.All() {
		orig, err := sf.Frame(i)
		require.NoError(t, err)
		require.True(t, f.Equal(orig))
	}

	none, err := sf.Select(func(*tables.Table) bool { return false })
	require.NoError(t, err)
	require.True(t, none.IsEmpty())
	require.Same(t, tables.Empty(), none.Baseframe())

	big := func(t *tables.Table) bool { return t.NumRows() > 1 }
	kept, err := sf.Select(big)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, kept.Sizes())

	dropped, err := sf.Reject(big)
	require.NoError(t, err)
	require.Equal(t, []int{1}, dropped.Sizes())

	_, err = sf.Select(nil)
	require.True(t, errs.IsInvalidArgument(err))
	_, err = sf.Reject(nil)
	require.True(t, errs.IsInvalidArgument(err))
}

func TestSelectedGroupIsNotUniversal(t *testing.T) {
	sf := byY(t)

	single, err := sf.Select(func(t *tables.Table) bool { return t.NumRows() == 1 })
	require.NoError(t, err)
	require.Equal(t, 1, single.Size())
	require.False(t, single.IsUniversal())
	require.Same(t, sf.Base(), single.Base())

	rejected, err := sf.Reject(func(t *tables.Table) bool { return t.NumRows() != 3 })
	require.NoError(t, err)
	require.False(t, rejected.IsUniversal())

	whole, err := ByIndices(sample(), []int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	kept, err := whole.Select(func(*tables.Table) bool { return true })
	require.NoError(t, err)
	require.True(t, kept.IsUniversal())

	// transformed frames form their own base
	heads, err := whole.Map(func(t *tables.Table) (*tables.Table, error) { return t.Head(2), nil })
	require.NoError(t, err)
	require.True(t, heads.IsUniversal())
}

func TestFilterMap(t *testing.T) {
	out, err := byY(t).FilterMap(func(t *tables.Table) (*tables.Table, bool, error) {
		if t.NumRows() == 3 {
			return nil, false, nil
		}
		return t.Tail(1), true, nil
	})
	require.NoError(t, err)
	require.Equal(t, []any{int64(2), int64(6)}, xs(t, out.Baseframe()))

	_, err = byY(t).FilterMap(nil)
	require.True(t, errs.IsInvalidArgument(err))
}

func TestAssign(t *testing.T) {
	out, err := byY(t).Assign(func(t *tables.Table) ([]*columns.Column, error) {
		n := make([]int64, t.NumRows())
		for i := range n {
			n[i] = int64(t.NumRows())
		}
		return []*columns.Column{columns.NewInt64("n", n, nil)}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "z", "n"}, out.Baseframe().Keys())

	n, err := out.Baseframe().Column("n")
	require.NoError(t, err)
	require.Equal(t, int64(2), n.Value(0))
	require.Equal(t, int64(3), n.Value(2))
	require.Equal(t, int64(1), n.Value(5))

	_, err = byY(t).Assign(func(*tables.Table) ([]*columns.Column, error) {
		return []*columns.Column{columns.NewInt64("n", []int64{1, 2, 3, 4}, nil)}, nil
	})
	require.True(t, errs.IsInvalidArgument(err))
}

func TestAllComposes(t *testing.T) {
	var sizes []int
	for _, f := range byY(t).All() {
		if f.NumRows() > 1 {
			sizes = append(sizes, f.NumRows())
		}
	}
	require.Equal(t, []int{2, 3}, sizes)
}
